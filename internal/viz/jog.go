package viz

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/kinetree/internal/kinematics"
)

const (
	minJogStep = 0.001
	maxJogStep = 0.5
	orbitStep  = math.Pi / 24
)

// JogModel moves the joints of a tree one at a time and shows the
// resulting skeleton and end link pose.
type JogModel struct {
	tree    *kinematics.Tree
	joints  []*kinematics.Link
	endLink string
	cursor  int
	step    float64
	cam     Camera
	theme   Theme
	styles  Styles
	err     error
	width   int
	height  int
}

// NewJogModel shows the pose of endLink; an empty endLink shows the last
// link in the tree.
func NewJogModel(tree *kinematics.Tree, endLink string) JogModel {
	var joints []*kinematics.Link
	for l := range tree.Joints() {
		joints = append(joints, l)
	}
	if endLink == "" {
		names := tree.LinkNames()
		endLink = names[len(names)-1]
	}
	return JogModel{
		tree:    tree,
		joints:  joints,
		endLink: endLink,
		step:    0.05,
		cam:     Camera{Yaw: math.Pi / 6, Pitch: 0.3},
		theme:   ThemeDefault,
		styles:  NewStyles(ThemeDefault),
		width:   80,
		height:  24,
	}
}

func (m JogModel) Init() tea.Cmd { return nil }

func (m JogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	return m, nil
}

func (m JogModel) handleKey(msg tea.KeyMsg) (JogModel, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.joints)-1 {
			m.cursor++
		}
	case "left", "h":
		m.jog(-1)
	case "right", "l":
		m.jog(1)
	case "+", "=":
		m.step = math.Min(maxJogStep, m.step*2)
	case "-", "_":
		m.step = math.Max(minJogStep, m.step/2)
	case "a":
		m.cam.Orbit(-orbitStep, 0)
	case "d":
		m.cam.Orbit(orbitStep, 0)
	case "w":
		m.cam.Orbit(0, orbitStep)
	case "s":
		m.cam.Orbit(0, -orbitStep)
	case "0":
		m.home()
	case "t":
		m.theme = NextTheme(m.theme)
		m.styles = NewStyles(m.theme)
	}
	return m, nil
}

// jog moves the selected joint by one step in dir, stopping at its limits.
func (m *JogModel) jog(dir float64) {
	if len(m.joints) == 0 {
		return
	}
	l := m.joints[m.cursor]
	v, _ := l.JointAngle()
	v += dir * m.step
	if r := l.Joint().Limits(); r != nil {
		v = r.Clamp(v)
	}
	m.err = l.SetJointAngle(v)
}

// home moves every joint to zero, or to the nearest limit when zero is out
// of range.
func (m *JogModel) home() {
	q := make([]float64, len(m.joints))
	for i, l := range m.joints {
		if r := l.Joint().Limits(); r != nil {
			q[i] = r.Clamp(0)
		}
	}
	m.err = m.tree.SetJointAngles(q)
}

// Cursor is the index of the selected joint.
func (m JogModel) Cursor() int { return m.cursor }

func (m JogModel) Step() float64 { return m.step }

func (m JogModel) Theme() Theme { return m.theme }

func (m JogModel) View() string {
	st := m.styles
	var b strings.Builder
	b.WriteString(st.Title.Render(strings.ToUpper(m.tree.Name())) + "  " +
		st.Muted.Render(fmt.Sprintf("%d dof, step %.3f", len(m.joints), m.step)) + "\n\n")

	for i, l := range m.joints {
		v, _ := l.JointAngle()
		name := fmt.Sprintf("%-18s", l.Joint().Name())
		val := fmt.Sprintf("% 8.4f", v)
		bar := LimitBar(v, l.Joint().Limits(), 21)
		if i == m.cursor {
			b.WriteString(st.Selected.Render("▸ "+name) + " " + st.Value.Render(val) + " " + st.Selected.Render(bar) + "\n")
		} else {
			b.WriteString(st.Label.Render("  "+name) + " " + st.Value.Render(val) + " " + st.Muted.Render(bar) + "\n")
		}
	}

	segs, err := TreeSegments(m.tree)
	if err != nil {
		b.WriteString("\n" + st.Bad.Render(err.Error()) + "\n")
		return b.String()
	}
	if pose, ok := m.tree.WorldTransform(m.endLink); ok {
		b.WriteString("\n" + st.Label.Render(m.endLink+" ") + st.Value.Render(FormatPose(pose)) + "\n")
	}

	cols := max(20, min(m.width-4, 60))
	rows := max(6, min(m.height-len(m.joints)-10, 20))
	cv := NewCanvas(cols, rows)
	m.cam.Render(cv, segs)
	b.WriteString(st.Panel.Render(strings.TrimRight(cv.String(), "\n")) + "\n")

	if m.err != nil {
		b.WriteString(st.Warn.Render(m.err.Error()) + "\n")
	}
	keys := []string{"j/k select", "h/l jog", "+/- step", "a/d/w/s view", "0 zero", "t theme", "q quit"}
	b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Muted).Render(strings.Join(keys, "  ")) + "\n")
	return b.String()
}

// RunJog runs the jog TUI until the user quits and returns the final model.
func RunJog(tree *kinematics.Tree, endLink string) (JogModel, error) {
	final, err := tea.NewProgram(NewJogModel(tree, endLink), tea.WithAltScreen()).Run()
	if err != nil {
		return JogModel{}, err
	}
	return final.(JogModel), nil
}
