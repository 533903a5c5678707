package service

import (
	"fmt"
	"strings"

	"ipcrpc/command"
	"ipcrpc/metadata"
)

// renderHelp builds one markdown-flavoured help string per registered
// command, in registry order, per spec.md §4.4.
//
// Grounded on original_source/service.py's help_screen: bold header,
// description, a conditional "Can take a long time to run." line, then
// Arguments/Returns/Errors sections. The arguments section switches
// explicitly on the three ArgumentShape cases rather than mirroring the
// original's `case arguments:` — spec.md §9 notes that pattern accidentally
// matched anything because of how Python match-statement capture binding
// works, which this rewrite cannot reproduce (and should not want to).
func renderHelp(reg *command.Registry) []string {
	names := reg.Names()
	out := make([]string, 0, len(names))
	for _, name := range names {
		entry, ok := reg.Get(name)
		if !ok {
			// Names() is derived from the same map Get reads; this would
			// only happen under concurrent registry mutation, which
			// spec.md §5 forbids during Run.
			panic(fmt.Sprintf("service: registry inconsistency for %q", name))
		}
		out = append(out, renderCommandHelp(name, entry.Metadata))
	}
	return out
}

func renderCommandHelp(name string, m metadata.Metadata) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**%s**\n", name)
	fmt.Fprintf(&b, "%s\n", m.Description)
	if m.Timeout.Milliseconds() > metadata.Default.Milliseconds() {
		b.WriteString("Can take a long time to run.\n")
	}
	b.WriteString("\n**Arguments**\n")
	b.WriteString(renderArgumentShape(m.Arguments))
	b.WriteString("\n\n**Returns**\n")
	fmt.Fprintf(&b, "%s\n\n", m.Returns)
	b.WriteString("**Errors**\n")
	b.WriteString(m.Errors)

	return b.String()
}

func renderArgumentShape(shape metadata.ArgumentShape) string {
	switch shape.Kind {
	case metadata.ShapeNone:
		return "None"
	case metadata.ShapeVariableLength:
		return fmt.Sprintf("%s (variable length) - %s", shape.Inner.Name, shape.Inner.Description)
	case metadata.ShapeList:
		if len(shape.Items) == 0 {
			return "None"
		}
		parts := make([]string, len(shape.Items))
		for i, item := range shape.Items {
			parts[i] = fmt.Sprintf("%s - %s", item.Name, item.Description)
		}
		return strings.Join(parts, "\n")
	default:
		panic(fmt.Sprintf("service: unreachable ArgumentShape kind %d", shape.Kind))
	}
}
