package events

const KindUserTranscript Kind = "user.transcript"

// UserTranscript carries the finalized transcription of a user utterance.
type UserTranscript struct {
	Base
	Transcript string
}

func NewUserTranscript(transcript string) UserTranscript {
	return UserTranscript{Base: NewBase(KindUserTranscript), Transcript: transcript}
}
