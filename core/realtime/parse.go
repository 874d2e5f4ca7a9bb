package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/voxa-labs/voxcore/core/events"
)

type frameItem struct {
	Type      string `json:"type,omitempty"`
	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	Output    string `json:"output,omitempty"`
}

// frameError tolerates both an error object and a bare string payload.
type frameError struct {
	Message string
}

func (e *frameError) UnmarshalJSON(raw []byte) error {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		e.Message = asString
		return nil
	}

	var asObject struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &asObject); err != nil {
		return err
	}
	e.Message = asObject.Message
	return nil
}

type serverFrame struct {
	Type       string      `json:"type"`
	Delta      string      `json:"delta,omitempty"`
	Transcript string      `json:"transcript,omitempty"`
	CallID     string      `json:"call_id,omitempty"`
	Name       string      `json:"name,omitempty"`
	Arguments  string      `json:"arguments,omitempty"`
	Item       *frameItem  `json:"item,omitempty"`
	Error      *frameError `json:"error,omitempty"`
}

// ParseFrame normalizes one inbound wire frame into a canonical event. A nil
// event with a nil error means the frame carries nothing actionable (e.g. an
// output item of a kind the session does not track).
func ParseFrame(raw []byte) (events.Event, error) {
	var frame serverFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("failed to unmarshal frame: %w", err)
	}

	switch frame.Type {
	case "conversation.created":
		return events.NewConversationCreated(), nil

	case "session.updated":
		return events.NewSessionUpdated(), nil

	case "input_audio_buffer.speech_started":
		return events.NewSpeechStarted(), nil

	case "input_audio_buffer.speech_stopped":
		return events.NewSpeechStopped(), nil

	case "response.created":
		return events.NewResponseCreated(), nil

	case "response.done":
		return events.NewResponseDone(), nil

	case "response.output_item.added":
		if frame.Item != nil && frame.Item.Type == "message" {
			return events.NewMessageStarted(), nil
		}
		return nil, nil

	case "response.function_call_arguments.done":
		// Some servers emit this, others only emit response.output_item.done
		// with a function_call item. Both collapse into the same event.
		return events.NewToolCallSighted(frame.CallID, frame.Name, frame.Arguments), nil

	case "response.output_item.done":
		if frame.Item != nil && frame.Item.Type == "function_call" {
			return events.NewToolCallSighted(frame.Item.CallID, frame.Item.Name, frame.Item.Arguments), nil
		}
		return nil, nil

	case "conversation.item.added":
		if frame.Item != nil && frame.Item.Type == "function_call_output" {
			return events.NewToolOutputSighted(frame.Item.CallID, frame.Item.Name, frame.Item.Output), nil
		}
		return nil, nil

	case "response.output_audio.delta":
		if frame.Delta == "" {
			return nil, nil
		}
		return events.NewAudioDelta(frame.Delta), nil

	case "response.output_audio_transcript.delta":
		if frame.Delta == "" {
			return nil, nil
		}
		return events.NewTranscriptDelta(frame.Delta), nil

	case "response.output_audio_transcript.done":
		return events.NewTranscriptDone(frame.Transcript), nil

	case "conversation.item.input_audio_transcription.completed":
		if frame.Transcript == "" {
			return nil, nil
		}
		return events.NewUserTranscript(frame.Transcript), nil

	case "error":
		message := "an error occurred"
		if frame.Error != nil && frame.Error.Message != "" {
			message = frame.Error.Message
		}
		return events.NewRemoteError(message), nil
	}

	return events.NewUnknown(frame.Type), nil
}
