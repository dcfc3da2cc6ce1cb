package importer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"undisorder/internal/media"
)

// Prompter gathers interactive decisions. Implementations must be safe to
// call sequentially from the pipeline.
type Prompter interface {
	// ConfirmDirname shows a suggested target directory for a group of
	// files. Returns the directory to use (possibly edited) and false to
	// skip the group entirely.
	ConfirmDirname(dirname string, files []string) (string, bool)
	// ConfirmUpdate asks whether a changed, previously imported file should
	// be re-imported.
	ConfirmUpdate(name string) bool
	// SelectDirectories asks which directory groups to import. Returns the
	// accepted relative paths.
	SelectDirectories(groups []media.DirectoryGroup) (map[string]bool, error)
}

// TerminalPrompter prompts on the controlling terminal. When stdin is not
// a TTY every prompt resolves to its non-interactive default (accept the
// suggestion, do not update).
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

// NewTerminalPrompter prompts on stdin/stdout.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stdout}
}

func (p *TerminalPrompter) interactive() bool {
	if f, ok := p.In.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return true // non-File readers are test harnesses
}

func (p *TerminalPrompter) readLine() string {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}

func (p *TerminalPrompter) ConfirmDirname(dirname string, files []string) (string, bool) {
	if !p.interactive() {
		return dirname, true
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	list := strings.Join(names, ", ")
	if len(names) > 5 {
		list = strings.Join(names[:5], ", ") + fmt.Sprintf(", ... +%d more", len(names)-5)
	}

	label := "files"
	if len(files) == 1 {
		label = "file"
	}
	fmt.Fprintf(p.Out, "  %s/ (%d %s: %s)\n  [Enter=accept, type new name, or 's' to skip]: ", dirname, len(files), label, list)

	answer := p.readLine()
	if answer == "s" {
		return "", false
	}
	if answer == "" {
		return dirname, true
	}
	return answer, true
}

func (p *TerminalPrompter) ConfirmUpdate(name string) bool {
	if !p.interactive() {
		return false
	}
	fmt.Fprintf(p.Out, "  %s has changed since last import. Update? [y/N]: ", name)
	return strings.EqualFold(p.readLine(), "y")
}

func (p *TerminalPrompter) SelectDirectories(groups []media.DirectoryGroup) (map[string]bool, error) {
	accepted := make(map[string]bool)
	if !p.interactive() {
		for _, g := range groups {
			accepted[g.RelPath] = true
		}
		return accepted, nil
	}

	for i, g := range groups {
		fmt.Fprintf(p.Out, "  %s\n", g.Summary())

		for {
			fmt.Fprint(p.Out, "  [y] accept  [n] skip  [l] list  [a] all  [q] quit: ")
			switch p.readLine() {
			case "y":
				accepted[g.RelPath] = true
			case "n":
			case "a":
				for _, remaining := range groups[i:] {
					accepted[remaining.RelPath] = true
				}
				return accepted, nil
			case "q":
				return nil, fmt.Errorf("selection aborted")
			case "l":
				for _, f := range g.Files {
					fmt.Fprintf(p.Out, "    %s\n", filepath.Base(f))
				}
				continue
			default:
				continue
			}
			break
		}
		fmt.Fprintln(p.Out)
	}
	return accepted, nil
}

var _ Prompter = (*TerminalPrompter)(nil)
