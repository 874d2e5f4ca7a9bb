package events

const (
	// KindToolCallSighted identifies a tool call announcement. More than one
	// wire shape can announce the same call; all of them normalize to this.
	KindToolCallSighted Kind = "tool_call.sighted"
	// KindToolOutputSighted identifies a tool output announcement.
	KindToolOutputSighted Kind = "tool_call.output_sighted"
)

// ToolCallSighted marks the first (or a repeated) announcement of a tool
// call. De-duplication by CallID happens downstream, not here.
type ToolCallSighted struct {
	Base
	CallID    string
	Name      string
	Arguments string
}

func NewToolCallSighted(callID, name, arguments string) ToolCallSighted {
	return ToolCallSighted{Base: NewBase(KindToolCallSighted), CallID: callID, Name: name, Arguments: arguments}
}

// ToolOutputSighted marks an announcement of a tool call's output.
type ToolOutputSighted struct {
	Base
	CallID string
	Name   string
	Output string
}

func NewToolOutputSighted(callID, name, output string) ToolOutputSighted {
	return ToolOutputSighted{Base: NewBase(KindToolOutputSighted), CallID: callID, Name: name, Output: output}
}
