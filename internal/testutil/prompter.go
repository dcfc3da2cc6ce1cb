package testutil

import (
	"undisorder/internal/media"
)

// ScriptedPrompter answers prompts from canned responses, recording what
// was asked.
type ScriptedPrompter struct {
	// Dirnames maps a suggested dirname to its reply; missing entries are
	// accepted unchanged. An empty-string reply skips the group.
	Dirnames map[string]string
	// UpdateAnswer is returned for every update confirmation.
	UpdateAnswer bool
	// Accepted is returned from SelectDirectories; nil accepts every group.
	Accepted map[string]bool

	DirnameAsked []string
	UpdateAsked  []string
}

func (p *ScriptedPrompter) ConfirmDirname(dirname string, files []string) (string, bool) {
	p.DirnameAsked = append(p.DirnameAsked, dirname)
	reply, ok := p.Dirnames[dirname]
	if !ok {
		return dirname, true
	}
	if reply == "" {
		return "", false
	}
	return reply, true
}

func (p *ScriptedPrompter) ConfirmUpdate(name string) bool {
	p.UpdateAsked = append(p.UpdateAsked, name)
	return p.UpdateAnswer
}

func (p *ScriptedPrompter) SelectDirectories(groups []media.DirectoryGroup) (map[string]bool, error) {
	if p.Accepted != nil {
		return p.Accepted, nil
	}
	accepted := make(map[string]bool, len(groups))
	for _, g := range groups {
		accepted[g.RelPath] = true
	}
	return accepted, nil
}
