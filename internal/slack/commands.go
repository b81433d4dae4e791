package slack

import (
	"fmt"
	"html"
	"strings"
	"unicode"
)

type CommandType string

const (
	CmdLogin CommandType = "login"
	CmdQR    CommandType = "qr"
	CmdPing  CommandType = "ping"
	CmdHelp  CommandType = "help"
)

type Command struct {
	Type CommandType
	Args []string
	Raw  string
	// Rest is the text after the command word.
	Rest string
}

// LoginArgs are the arguments of `login <username> <password> <school name>`.
// The school name may contain spaces; a password with spaces must be quoted.
type LoginArgs struct {
	Username   string
	Password   string
	SchoolName string
}

func ParseCommand(text string) (*Command, error) {
	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) == 0 {
		return &Command{Type: CmdHelp}, nil
	}

	cmd := &Command{
		Raw: text,
	}
	if len(parts) > 1 {
		cmd.Args = parts[1:]
		cmd.Rest = strings.TrimSpace(strings.TrimSpace(text)[len(parts[0]):])
	}

	switch strings.ToLower(parts[0]) {
	case "login":
		cmd.Type = CmdLogin
	case "qr":
		cmd.Type = CmdQR
	case "ping":
		cmd.Type = CmdPing
	case "help":
		cmd.Type = CmdHelp
	default:
		return nil, fmt.Errorf("unknown command: %s", parts[0])
	}

	return cmd, nil
}

// Login extracts the login arguments of a CmdLogin command.
func (c *Command) Login() (LoginArgs, error) {
	args, err := splitQuoted(c.Rest)
	if err != nil {
		return LoginArgs{}, err
	}
	if len(args) < 3 {
		return LoginArgs{}, fmt.Errorf("usage: `/untis login <username> <password> <school name>`")
	}

	school := strings.Join(args[2:], " ")
	if len([]rune(school)) < 3 {
		return LoginArgs{}, fmt.Errorf("the school name needs at least 3 characters")
	}

	return LoginArgs{
		Username:   args[0],
		Password:   args[1],
		SchoolName: school,
	}, nil
}

// splitQuoted splits on whitespace; "double quoted" words are kept whole.
func splitQuoted(s string) ([]string, error) {
	var (
		words   []string
		word    strings.Builder
		inWord  bool
		inQuote bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			inWord = true
		case !inQuote && unicode.IsSpace(r):
			if inWord {
				words = append(words, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteRune(r)
			inWord = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("missing closing quote")
	}
	if inWord {
		words = append(words, word.String())
	}
	return words, nil
}

// QRData returns the QR payload of a CmdQR command. Slack escapes `&`, `<`
// and `>` in command text and may wrap links as <url> or <url|label>.
func (c *Command) QRData() (string, error) {
	data := strings.Join(c.Args, "")
	if strings.HasPrefix(data, "<") && strings.HasSuffix(data, ">") {
		data = strings.TrimSuffix(strings.TrimPrefix(data, "<"), ">")
		if i := strings.IndexByte(data, '|'); i >= 0 {
			data = data[:i]
		}
	}
	data = html.UnescapeString(data)

	if data == "" {
		return "", fmt.Errorf("usage: `/untis qr <text of your untis login qr code>`")
	}
	return data, nil
}

func GetHelpText() string {
	return `*Available commands:*

*Register:*
• ` + "`/untis login <username> <password> <school name>`" + ` - Log in with your untis credentials. Put a password that contains spaces in double quotes.
• ` + "`/untis qr <qr code text>`" + ` - Log in with the text of your untis mobile login QR code

*Other:*
• ` + "`/untis ping`" + ` - Check that the bot is alive
• ` + "`/untis help`" + ` - Show this help

Once registered you get a direct message whenever one of your lessons this week is cancelled.`
}
