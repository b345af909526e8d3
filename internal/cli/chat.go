package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archdiagram/pkg/client"
	"github.com/matzehuels/archdiagram/pkg/generate"
)

// imagePlaceholder stands in for a rendered diagram in the history sent
// back to the assistant.
const imagePlaceholder = "[Generated Image]"

// Chat styles
var (
	chatUserStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	chatAssistantStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	chatTextStyle      = lipgloss.NewStyle().Foreground(colorWhite).PaddingLeft(2)
)

// chatCommand creates the chat command, an interactive assistant session
// against a running API server.
func (c *CLI) chatCommand() *cobra.Command {
	var (
		apiURL string
		output string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the architecture assistant",
		Long: `Start an interactive session with the architecture assistant.

The assistant asks clarifying questions and, once it has enough detail,
requests a diagram. Generated diagrams are saved to the output directory.
Requires a running server (see "archdiagram serve").`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiURL == "" {
				apiURL = c.Config.APIURL()
			}
			if err := ensureDir(output); err != nil {
				return err
			}
			api, err := client.New(apiURL, client.WithLogger(c.Logger))
			if err != nil {
				return err
			}

			// The TUI owns the terminal; keep log lines out of it.
			level := c.Logger.GetLevel()
			c.Logger.SetLevel(log.FatalLevel)
			defer c.Logger.SetLevel(level)

			m := newChatModel(cmd.Context(), api, output)
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return cmd.Context().Err()
			}
			return err
		},
	}

	cmd.Flags().StringVar(&apiURL, "api", "", "API base URL (default http://<server.domain>:<server.port>)")
	cmd.Flags().StringVarP(&output, "output", "o", ".", "directory for generated diagrams")
	return cmd
}

// chatAPI is the part of the API client the chat session uses.
type chatAPI interface {
	Assistant(ctx context.Context, message string, history generate.Conversation) (generate.Reply, error)
	GenerateDiagram(ctx context.Context, description string) (*client.Image, error)
}

// chatTurn is one entry in the transcript. Image is the saved diagram path
// for assistant turns that produced one.
type chatTurn struct {
	Role  generate.Role
	Text  string
	Image string
}

// conversation converts turns into assistant history. Turns that carry an
// image are sent as a placeholder.
func conversation(turns []chatTurn) generate.Conversation {
	conv := make(generate.Conversation, len(turns))
	for i, t := range turns {
		content := t.Text
		if t.Image != "" {
			content = imagePlaceholder
		}
		conv[i] = generate.Message{Role: t.Role, Content: content}
	}
	return conv
}

// replyMsg carries the assistant's answer back into the update loop.
type replyMsg struct{ turn chatTurn }

// ask sends message with history and, when the assistant requests it,
// generates and saves the diagram. Failures become assistant text so the
// session can continue.
func ask(ctx context.Context, api chatAPI, outDir, message string, history generate.Conversation) chatTurn {
	reply, err := api.Assistant(ctx, message, history)
	if err != nil {
		return chatTurn{Role: generate.RoleAssistant, Text: assistantFailure(err)}
	}

	turn := chatTurn{Role: generate.RoleAssistant, Text: reply.Message}
	if turn.Text == "" {
		turn.Text = "Sorry, I couldn't generate a response."
	}
	if !reply.WantsDiagram() {
		return turn
	}

	img, err := api.GenerateDiagram(ctx, reply.InvokeDiagramGeneration)
	if err == nil {
		turn.Image, err = img.Save(outDir)
	}
	if err != nil {
		turn.Image = ""
		turn.Text += "\n(Note: Diagram generation failed)"
	}
	return turn
}

func assistantFailure(err error) string {
	var se *client.StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("Error: Unable to get a response from the server (Status code: %d)", se.StatusCode)
	}
	return "Sorry, there was an error communicating with the server."
}

// =============================================================================
// chatModel - Interactive assistant session
// =============================================================================

type chatModel struct {
	ctx     context.Context
	api     chatAPI
	outDir  string
	turns   []chatTurn
	input   textinput.Model
	spinner spinner.Model
	waiting bool
	width   int
}

func newChatModel(ctx context.Context, api chatAPI, outDir string) chatModel {
	ti := textinput.New()
	ti.Placeholder = "How can I help?"
	ti.Prompt = iconInfo + " "
	ti.PromptStyle = StyleHighlight
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styleIconSpinner

	return chatModel{ctx: ctx, api: api, outDir: outDir, input: ti, spinner: sp}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
	case replyMsg:
		m.waiting = false
		m.turns = append(m.turns, msg.turn)
		return m, nil
	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit records the typed message and starts the request. Input is
// ignored while a reply is pending.
func (m chatModel) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.waiting {
		return m, nil
	}
	history := conversation(m.turns)
	m.turns = append(m.turns, chatTurn{Role: generate.RoleUser, Text: text})
	m.input.SetValue("")
	m.waiting = true

	ctx, api, outDir := m.ctx, m.api, m.outDir
	request := func() tea.Msg {
		return replyMsg{turn: ask(ctx, api, outDir, text, history)}
	}
	return m, tea.Batch(request, m.spinner.Tick)
}

func (m chatModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Architecture Assistant"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("⏎ send  esc quit"))
	b.WriteString("\n\n")

	for _, t := range m.turns {
		if t.Role == generate.RoleUser {
			b.WriteString(chatUserStyle.Render("you"))
		} else {
			b.WriteString(chatAssistantStyle.Render("assistant"))
		}
		b.WriteString("\n")
		text := chatTextStyle
		if m.width > 0 {
			text = text.Width(m.width - 2)
		}
		b.WriteString(text.Render(t.Text))
		b.WriteString("\n")
		if t.Image != "" {
			b.WriteString("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(t.Image) + "\n")
		}
		b.WriteString("\n")
	}

	if m.waiting {
		b.WriteString(m.spinner.View() + " " + StyleDim.Render("Thinking..."))
	} else {
		b.WriteString(m.input.View())
	}
	b.WriteString("\n")
	return b.String()
}
