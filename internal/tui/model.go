// Package tui renders a chat session in the terminal. All session
// mutation happens through the bubbletea update loop or behind the
// session's own lock; the view only ever sees consistent snapshots.
package tui

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/AmonApolonio/lookchat/internal/chat"
	"github.com/AmonApolonio/lookchat/internal/domain"
)

const sendTimeout = 30 * time.Second

// Uploader pushes an attachment through the server and returns its public
// URL.
type Uploader interface {
	UploadPhoto(ctx context.Context, fileName, mimeType string, data []byte) (string, error)
}

// sessionUpdateMsg signals that the session changed and a new snapshot
// should be rendered.
type sessionUpdateMsg struct{}

// sendResultMsg carries the outcome of a dispatched user turn.
type sendResultMsg struct{ err error }

// uploadResultMsg carries the outcome of an attachment upload.
type uploadResultMsg struct {
	id  string
	url string
	err error
}

// Model is the bubbletea model for the chat surface.
type Model struct {
	session  *chat.Session
	poller   *chat.Poller
	uploader Uploader

	state   chat.State
	input   textinput.Model
	spinner spinner.Model

	width    int
	quitting bool
}

// New creates the chat model.
func New(session *chat.Session, poller *chat.Poller, uploader Uploader) Model {
	ti := textinput.New()
	ti.Placeholder = "Descreva o look que você procura..."
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return Model{
		session:  session,
		poller:   poller,
		uploader: uploader,
		state:    session.Snapshot(),
		input:    ti,
		spinner:  sp,
		width:    80,
	}
}

// Init starts the spinner and the session-update subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForUpdate(m.session))
}

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case sessionUpdateMsg:
		m.state = m.session.Snapshot()
		return m, waitForUpdate(m.session)

	case sendResultMsg:
		// Failures already surfaced in the transcript by the session.
		return m, nil

	case uploadResultMsg:
		if msg.err != nil {
			m.session.FailImage(msg.id, msg.err)
		} else {
			m.session.FinishImage(msg.id, msg.url)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		m.poller.Stop()
		return m, tea.Quit

	case "ctrl+l":
		m.session.Clear()
		m.poller.Restart()
		m.state = m.session.Snapshot()
		return m, nil

	case "enter":
		if m.state.WaitingForAI || m.state.GeneratingLooks {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.SetValue("")

		if name, ok := strings.CutPrefix(text, "/attach "); ok {
			return m, m.uploadCmd(strings.TrimSpace(name))
		}
		return m, m.sendCmd(text)
	}

	// Bare digits pick a quick reply when the input line is empty.
	if m.input.Value() == "" && !m.state.WaitingForAI && !m.state.GeneratingLooks {
		if n, err := strconv.Atoi(msg.String()); err == nil {
			if n >= 1 && n <= len(m.state.QuickReplies) {
				return m, m.sendCmd(m.state.QuickReplies[n-1].Text)
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// waitForUpdate blocks on the session's update channel as a command, so
// payload merges done by the poller goroutine re-enter the update loop.
func waitForUpdate(s *chat.Session) tea.Cmd {
	return func() tea.Msg {
		<-s.Updates()
		return sessionUpdateMsg{}
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		return sendResultMsg{err: m.session.Send(ctx, text)}
	}
}

// uploadCmd stages a local image and uploads it through the server; the
// URL accompanies the next send.
func (m Model) uploadCmd(path string) tea.Cmd {
	id := m.session.StageImage(filepath.Base(path))
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return uploadResultMsg{id: id, err: err}
		}

		mimeType := mime.TypeByExtension(filepath.Ext(path))
		if mimeType == "" {
			mimeType = "image/jpeg"
		}

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		url, err := m.uploader.UploadPhoto(ctx, filepath.Base(path), mimeType, data)
		if err != nil {
			return uploadResultMsg{id: id, err: err}
		}
		return uploadResultMsg{id: id, url: url}
	}
}

// View renders the transcript, indicators and input line.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("Até logo!\n")
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Gennie — sua consultora de looks"))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter envia · /attach <arquivo> anexa imagem · ctrl+l limpa · esc sai"))
	b.WriteString("\n\n")

	if len(m.state.Messages) == 0 {
		b.WriteString(botStyle.Render("Vamos escolher um look."))
		b.WriteString("\n")
	}

	for _, msg := range m.state.Messages {
		b.WriteString(renderMessage(msg))
	}

	if status := m.statusLine(); status != "" {
		b.WriteString(m.spinner.View())
		b.WriteString(hintStyle.Render(status))
		b.WriteString("\n")
	}

	if len(m.state.StagedImages) > 0 {
		b.WriteString(renderStaged(m.state.StagedImages))
	}

	if replies := renderQuickReplies(m.state.QuickReplies); replies != "" {
		b.WriteString(replies)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	return tea.NewView(b.String())
}

func (m Model) statusLine() string {
	switch {
	case m.state.GeneratingLooks:
		plural := ""
		if m.state.RemainingLooks != 1 {
			plural = "s"
		}
		return fmt.Sprintf(" Gerando mais %d look%s...", m.state.RemainingLooks, plural)
	case m.state.Typing:
		return " digitando..."
	}
	return ""
}

func renderMessage(msg domain.Message) string {
	var b strings.Builder

	switch msg.Sender {
	case domain.SenderUser:
		b.WriteString(userStyle.Render("Você: " + msg.Text))
		b.WriteString("\n")
		for _, img := range msg.Images {
			b.WriteString(hintStyle.Render("  anexo: " + img))
			b.WriteString("\n")
		}
	default:
		b.WriteString(botStyle.Render("Gennie: " + msg.Text))
		b.WriteString("\n")
		if msg.Kind == domain.KindLook {
			b.WriteString(renderLooks(msg))
		}
	}
	return b.String()
}

func renderLooks(msg domain.Message) string {
	var b strings.Builder
	for i, look := range msg.Looks {
		b.WriteString(lookStyle.Render(fmt.Sprintf("  Look %d/%d", i+1, msg.ExpectedLookCount)))
		b.WriteString("\n")
		for _, line := range describeLook(look) {
			b.WriteString("    " + line + "\n")
		}
	}
	return b.String()
}

type lookSlot struct {
	desc  string
	items []domain.ProductItem
}

// describeLook summarizes one batch: the slot description plus its first
// product candidate.
func describeLook(look domain.LookBatch) []string {
	var d domain.LookDescription
	if look.Description != nil {
		d = *look.Description
	}
	slots := []lookSlot{
		{d.Item1, look.Items1},
		{d.Item2, look.Items2},
		{d.Item3, look.Items3},
		{d.Item4, look.Items4},
		{d.Item5, look.Items5},
	}

	var lines []string
	for _, slot := range slots {
		if slot.desc == "" && len(slot.items) == 0 {
			continue
		}
		line := slot.desc
		if len(slot.items) > 0 {
			first := slot.items[0]
			if line != "" {
				line += " — "
			}
			line += fmt.Sprintf("%s (%s, R$ %.2f)", first.Title, first.Source, first.Price)
		}
		lines = append(lines, line)
	}
	return lines
}

func renderStaged(images []chat.StagedImage) string {
	var b strings.Builder
	for _, img := range images {
		switch {
		case img.Uploading:
			b.WriteString(hintStyle.Render("  enviando " + img.Name + "..."))
		case img.Err != nil:
			b.WriteString(errorStyle.Render("  falhou " + img.Name + ": " + img.Err.Error()))
		default:
			b.WriteString(hintStyle.Render("  pronto " + img.Name))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderQuickReplies(replies []domain.QuickReply) string {
	if len(replies) == 0 {
		return ""
	}
	parts := make([]string, 0, len(replies))
	for i, r := range replies {
		parts = append(parts, fmt.Sprintf("%d) %s", i+1, r.Text))
	}
	return replyStyle.Render(strings.Join(parts, "   "))
}
