package events

const (
	KindResponseCreated Kind = "response.created"
	KindResponseDone    Kind = "response.done"
	KindMessageStarted  Kind = "response.message_started"
	KindAudioDelta      Kind = "response.audio_delta"
)

// ResponseCreated marks the start of a new assistant response.
type ResponseCreated struct{ Base }

func NewResponseCreated() ResponseCreated {
	return ResponseCreated{Base: NewBase(KindResponseCreated)}
}

// ResponseDone marks the end of an assistant response.
type ResponseDone struct{ Base }

func NewResponseDone() ResponseDone {
	return ResponseDone{Base: NewBase(KindResponseDone)}
}

// MessageStarted marks the first message-type output item of a response, the
// point where the agent is audibly talking.
type MessageStarted struct{ Base }

func NewMessageStarted() MessageStarted {
	return MessageStarted{Base: NewBase(KindMessageStarted)}
}

// AudioDelta carries one encoded frame of synthesized speech.
type AudioDelta struct {
	Base
	Audio string
}

func NewAudioDelta(audio string) AudioDelta {
	return AudioDelta{Base: NewBase(KindAudioDelta), Audio: audio}
}
