package interactive

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		wantType CommandType
		wantArg  string
	}{
		{"hello there", CommandMessage, "hello there"},
		{"/help", CommandHelp, ""},
		{"/?", CommandHelp, ""},
		{"/quit", CommandQuit, ""},
		{"/exit", CommandQuit, ""},
		{"/new", CommandNew, ""},
		{"/history", CommandHistory, ""},
		{"/chats", CommandChats, ""},
		{"/copy", CommandCopy, ""},
		{"/workflow wf-1", CommandWorkflow, "wf-1"},
		{"/wf", CommandWorkflow, ""},
		{"/status", CommandStatus, ""},
		{"/WORKFLOW wf-2", CommandWorkflow, "wf-2"},
	}

	for _, tt := range tests {
		cmd, err := ParseCommand(tt.input)
		if err != nil {
			t.Errorf("ParseCommand(%q) failed: %v", tt.input, err)
			continue
		}
		if cmd.Type != tt.wantType || cmd.Arg != tt.wantArg {
			t.Errorf("ParseCommand(%q) = {%v %q}, want {%v %q}",
				tt.input, cmd.Type, cmd.Arg, tt.wantType, tt.wantArg)
		}
	}
}

func TestParseCommand_Unknown(t *testing.T) {
	if _, err := ParseCommand("/bogus"); err == nil {
		t.Fatal("expected error for unknown slash command")
	}
}
