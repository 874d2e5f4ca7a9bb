package events

const (
	KindSpeechStarted Kind = "speech.started"
	KindSpeechStopped Kind = "speech.stopped"
)

// SpeechStarted marks server-side voice-activity detection of the user
// starting to speak.
type SpeechStarted struct{ Base }

func NewSpeechStarted() SpeechStarted {
	return SpeechStarted{Base: NewBase(KindSpeechStarted)}
}

// SpeechStopped marks server-side voice-activity detection of the user
// finishing an utterance.
type SpeechStopped struct{ Base }

func NewSpeechStopped() SpeechStopped {
	return SpeechStopped{Base: NewBase(KindSpeechStopped)}
}
