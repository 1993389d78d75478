package bot

import (
	"encoding/json"
)

// userContext holds the command a user is currently going through.
type userContext struct {
	chatID          int64
	curCommand      command
	curCommandName  string
	curCommandState []byte
}

func newUserContext(chatID int64) *userContext {
	return &userContext{chatID: chatID}
}

func (u *userContext) RunCommand(command command, name string) {
	u.setCommand(command, name)
	u.curCommand.Run()
}

// ResumeCommandAfterBotRestart attaches a restored command without sending its first prompt again.
func (u *userContext) ResumeCommandAfterBotRestart(command command) {
	u.setCommand(command, u.curCommandName)
}

func (u *userContext) HasRunningCommand() bool {
	return u.curCommand != nil
}

func (u *userContext) OnUserInput(input string) {
	u.curCommand.OnUserInput(input)
}

type userContextState struct {
	ChatID          int64  `json:"chatID"`
	CurCommandName  string `json:"curCommandName"`
	CurCommandState []byte `json:"curCommandState"`
}

func (u *userContext) MarshalJSON() ([]byte, error) {

	var cmdState []byte
	if u.curCommand != nil {
		if saveableCmd, ok := u.curCommand.(saveable); ok {
			var err error
			if cmdState, err = saveableCmd.SaveState(); err != nil {
				return nil, err
			}
		}
	}

	return json.Marshal(userContextState{
		ChatID:          u.chatID,
		CurCommandName:  u.curCommandName,
		CurCommandState: cmdState,
	})
}

func (u *userContext) UnmarshalJSON(data []byte) error {

	var state userContextState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}

	u.chatID = state.ChatID
	u.curCommandName = state.CurCommandName
	u.curCommandState = state.CurCommandState
	return nil
}

func (u *userContext) setCommand(command command, name string) {
	u.curCommand = command
	u.curCommandName = name
	u.curCommand.WithFinishCallback(func() {
		u.curCommand = nil
		u.curCommandName = ""
	})
	u.curCommand.WithKeyboardOnFinalMessage(defaultReplyKeyboard())
}
