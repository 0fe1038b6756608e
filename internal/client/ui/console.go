package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dkeye/viewing/internal/client/media"
	"github.com/dkeye/viewing/internal/domain"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

// Console renders to a terminal. With AutoConfirm the join dialog is skipped.
type Console struct {
	Out         io.Writer
	In          io.Reader
	AutoConfirm bool
	Colours     bool

	mu        sync.Mutex
	linesOnce sync.Once
	lines     chan string
}

func NewConsole(out io.Writer, in io.Reader, autoConfirm, colours bool) *Console {
	return &Console{Out: out, In: in, AutoConfirm: autoConfirm, Colours: colours}
}

func (c *Console) paint(style color.Style, s string) string {
	if !c.Colours {
		return s
	}
	return style.Render(s)
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.Out, s)
}

func (c *Console) Toast(level Level, message string) {
	switch level {
	case Warning:
		c.println(c.paint(color.New(color.FgYellow), "! "+message))
	case Error:
		c.println(c.paint(color.New(color.FgRed, color.OpBold), "x "+message))
	default:
		c.println(c.paint(color.New(color.FgCyan), "i "+message))
	}
}

func (c *Console) ConfirmJoin(ctx context.Context, capability media.Capability, name string) (string, bool) {
	c.println(fmt.Sprintf("Camera: %s  Microphone: %s", onOff(capability.VideoEnabled), onOff(capability.AudioEnabled)))
	if c.AutoConfirm || c.In == nil {
		return name, true
	}
	c.mu.Lock()
	fmt.Fprintf(c.Out, "Join as %q? [Enter to confirm, type a new name, or 'n' to cancel] ", name)
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-c.Lines():
		line = strings.TrimSpace(line)
		switch {
		case !ok:
			return "", false
		case strings.EqualFold(line, "n"):
			return "", false
		case line == "":
			return name, true
		default:
			return line, true
		}
	}
}

// Lines streams input lines. The channel closes when input ends.
// Every caller shares one reader.
func (c *Console) Lines() <-chan string {
	c.linesOnce.Do(func() {
		c.lines = make(chan string)
		go func() {
			defer close(c.lines)
			if c.In == nil {
				return
			}
			scanner := bufio.NewScanner(c.In)
			for scanner.Scan() {
				c.lines <- scanner.Text()
			}
		}()
	})
	return c.lines
}

func (c *Console) ShowRoster(host domain.ConnID, participants []domain.Participant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	table := tablewriter.NewWriter(c.Out)
	table.SetHeader([]string{"Name", "Connection", "Joined"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.Append([]string{"(host)", string(host), ""})
	for _, p := range participants {
		table.Append([]string{p.Name, string(p.ConnID), p.JoinedAt.Local().Format("15:04:05")})
	}
	table.Render()
}

func (c *Console) ShowChat(msg domain.ChatMessage) {
	name := msg.Sender.Name
	if msg.Sender.IsHost {
		name = c.paint(color.New(color.FgGreen, color.OpBold), name+" (host)")
	}
	c.println(fmt.Sprintf("[%s] %s: %s", msg.Timestamp.Local().Format("15:04:05"), name, msg.Message))
}

func (c *Console) ShowRecording(on bool) {
	if on {
		c.println(c.paint(color.New(color.FgRed), "● recording"))
		return
	}
	c.println("recording stopped")
}

func (c *Console) ShowEnded(message string) {
	c.println(c.paint(color.New(color.BgBlack, color.FgWhite), "  ====== "+message+" ======"))
}

func (c *Console) NavigateAway() {
	c.println("bye")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
