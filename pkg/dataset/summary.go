package dataset

import (
	"fmt"
	"io"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
)

type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeParseFailed
	OutcomeEmpty
	OutcomeNoLabel
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeParseFailed:
		return "parse failed"
	case OutcomeEmpty:
		return "no frames"
	case OutcomeNoLabel:
		return "no label"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Summary counts what happened to every file considered for a dataset.
type Summary struct {
	Files    int
	Outcomes map[Outcome]int
	Classes  map[int]int
}

func newSummary(files int) Summary {
	return Summary{
		Files:    files,
		Outcomes: map[Outcome]int{},
		Classes:  map[int]int{},
	}
}

func (s *Summary) record(outcome Outcome, label int) {
	s.Outcomes[outcome]++
	if outcome == OutcomeOK {
		s.Classes[label]++
	}
}

func (s Summary) Skipped() int {
	return s.Files - s.Outcomes[OutcomeOK]
}

func (s Summary) Write(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Files")
	t.AppendHeader(table.Row{"Outcome", "Files"})
	for _, o := range []Outcome{OutcomeOK, OutcomeParseFailed, OutcomeEmpty, OutcomeNoLabel} {
		t.AppendRow(table.Row{o.String(), s.Outcomes[o]})
	}
	t.AppendFooter(table.Row{"total", s.Files})
	t.Render()

	classes := make([]int, 0, len(s.Classes))
	for class := range s.Classes {
		classes = append(classes, class)
	}
	slices.Sort(classes)

	t = table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Samples per Class")
	t.AppendHeader(table.Row{"Label", "Action ID", "Samples"})
	for _, class := range classes {
		t.AppendRow(table.Row{class, class + 1, s.Classes[class]})
	}
	t.Render()
}
