package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrDeclined is returned when the user gives no answer to a required
// prompt or closes the input.
var ErrDeclined = errors.New("no input provided")

// maxAttempts is how many invalid answers Ask accepts before giving up.
const maxAttempts = 3

// CredentialURL is where a Firecrawl API key can be created.
const CredentialURL = "https://www.firecrawl.dev/app/api-keys"

// Prompter asks questions on a line-oriented input.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer

	// fd is the terminal file descriptor of the input, or -1.
	fd int

	pauser Pauser
}

// Pauser is something that draws on the prompt's output and has to stop
// while a question is asked, such as Progress.
type Pauser interface {
	Pause() (resume func())
}

// PauseDuring makes the credential prompt pause pa while it waits for input.
func (p *Prompter) PauseDuring(pa Pauser) {
	p.pauser = pa
}

// NewPrompter creates a Prompter reading from in and writing questions to out.
// Secret input is read without echo when in is a terminal.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	fd := -1
	if IsTerminal(in) {
		fd = int(in.(*os.File).Fd())
	}
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
		fd:  fd,
	}
}

// Ask prompts for a required value. An empty answer selects def; if def is
// also empty, ErrDeclined is returned. When validate rejects the answer the
// error is shown and the question repeated.
func (p *Prompter) Ask(label, def string, validate func(string) error) (string, error) {
	return p.ask(label, def, true, validate)
}

// AskOptional prompts for a value that may be left empty. Only non-empty
// answers are validated.
func (p *Prompter) AskOptional(label string, validate func(string) error) (string, error) {
	return p.ask(label, "", false, validate)
}

func (p *Prompter) ask(label, def string, required bool, validate func(string) error) (string, error) {
	var lastErr error
	for range maxAttempts {
		if def != "" {
			fmt.Fprintf(p.out, "%s [%s]: ", label, def)
		} else {
			fmt.Fprintf(p.out, "%s: ", label)
		}

		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" {
			answer = def
		}
		if answer == "" {
			if required {
				return "", ErrDeclined
			}
			return "", nil
		}

		if validate == nil {
			return answer, nil
		}
		if lastErr = validate(answer); lastErr == nil {
			return answer, nil
		}
		fmt.Fprintf(p.out, "  %v\n", lastErr)
	}
	return "", lastErr
}

// AskSecret prompts for a value without echoing it when the input is a
// terminal.
func (p *Prompter) AskSecret(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)

	if p.fd < 0 {
		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" {
			return "", ErrDeclined
		}
		return answer, nil
	}

	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read secret input: %w", err)
	}
	answer := strings.TrimSpace(string(b))
	if answer == "" {
		return "", ErrDeclined
	}
	return answer, nil
}

// PromptCredential asks for the Firecrawl API key.
func (p *Prompter) PromptCredential(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.pauser != nil {
		resume := p.pauser.Pause()
		defer resume()
	}
	fmt.Fprintf(p.out, "A Firecrawl API key is required. Create one at %s\n", CredentialURL)
	return p.AskSecret("Firecrawl API key")
}

// readLine returns the next trimmed line. A final line without a newline
// is returned as is; EOF with no data is ErrDeclined.
func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return "", ErrDeclined
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
