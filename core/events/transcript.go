package events

const (
	KindTranscriptDelta Kind = "transcript.delta"
	KindTranscriptDone  Kind = "transcript.done"
)

// TranscriptDelta carries one streamed piece of the assistant transcript.
type TranscriptDelta struct {
	Base
	Delta string
}

func NewTranscriptDelta(delta string) TranscriptDelta {
	return TranscriptDelta{Base: NewBase(KindTranscriptDelta), Delta: delta}
}

// TranscriptDone finalizes the assistant transcript for the current turn.
type TranscriptDone struct {
	Base
	Transcript string
}

func NewTranscriptDone(transcript string) TranscriptDone {
	return TranscriptDone{Base: NewBase(KindTranscriptDone), Transcript: transcript}
}
