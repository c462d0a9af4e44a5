package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ragh/internal/domain"
)

// QAPort is the TUI-facing subset of the answering pipeline.
type QAPort interface {
	Answer(ctx context.Context, question string, topK int) (*domain.Answer, error)
}

// Model is the Bubble Tea model for the interactive question console.
type Model struct {
	pipeline     QAPort
	meta         domain.MetadataStore
	topK         int
	input        textinput.Model
	viewport     viewport.Model
	answer       *domain.Answer
	passages     map[string]domain.PassageMeta
	status       string
	cursor       int
	ready        bool
	lastQuestion string
}

// New creates a new TUI model instance.
func New(pipeline QAPort, meta domain.MetadataStore, topK int, banner string) Model {
	ti := textinput.New()
	ti.Prompt = "? "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	status := "Ready. Ask away."
	if banner != "" {
		status = banner
	}
	return Model{pipeline: pipeline, meta: meta, topK: topK, input: ti, viewport: vp, status: status}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 1
		totalFooterLines := 1 // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				ans, err := m.pipeline.Answer(context.Background(), q, m.topK)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.answer = nil
					m.passages = nil
				} else {
					m.status = fmt.Sprintf("Answer for %q (%d passages)", q, len(ans.Retrieved))
					m.answer = ans
					m.passages = m.resolvePassages(ans)
					m.cursor = 0
					m.lastQuestion = q
				}
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "down":
			if m.answer != nil && len(m.answer.Retrieved) > 0 {
				m.cursor = (m.cursor + 1) % len(m.answer.Retrieved)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "up":
			if m.answer != nil && len(m.answer.Retrieved) > 0 {
				m.cursor = (m.cursor - 1 + len(m.answer.Retrieved)) % len(m.answer.Retrieved)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout with the answer and the current passage.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("ragh")
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) resolvePassages(ans *domain.Answer) map[string]domain.PassageMeta {
	if len(ans.Retrieved) == 0 {
		return nil
	}
	ids := make([]string, len(ans.Retrieved))
	for i, h := range ans.Retrieved {
		ids[i] = h.ID
	}
	metas, err := m.meta.GetMany(ids)
	if err != nil {
		return nil
	}
	return metas
}

func (m Model) renderCurrent() string {
	if m.answer == nil {
		return "No answer yet."
	}
	answer := answerStyle.Render(m.answer.Answer)
	if len(m.answer.Retrieved) == 0 {
		return answer + "\n\nNo passages were retrieved."
	}
	hit := m.answer.Retrieved[m.cursor]
	title := fmt.Sprintf("Passage %d/%d  score=%.3f", m.cursor+1, len(m.answer.Retrieved), hit.Score)
	body := "(passage text unavailable)"
	if meta, ok := m.passages[hit.ID]; ok {
		title += fmt.Sprintf("  %s [%d:%d)", meta.Source, meta.StartChar, meta.EndChar)
		body = highlightBestSentence(meta.Text, m.lastQuestion)
	}
	return answer + "\n\n" + title + "\n\n" + body
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	answerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
)

func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
