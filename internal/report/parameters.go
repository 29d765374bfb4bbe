package report

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/dharsanguruparan/rreport/internal/errs"
	"github.com/dharsanguruparan/rreport/internal/parameter"
)

// parameterList keeps parameters in insertion order under integer handles.
// A new handle is the largest live handle plus one, so the newest entry always
// holds the largest handle. An empty list falls back to the high-water mark
// and does not restart at zero.
type parameterList struct {
	entries *orderedmap.OrderedMap[int, *parameter.Parameter]
	next    int
}

func newParameterList() *parameterList {
	return &parameterList{entries: orderedmap.New[int, *parameter.Parameter]()}
}

func (l *parameterList) add(p *parameter.Parameter) int {
	index := l.next
	if newest := l.entries.Newest(); newest != nil {
		index = newest.Key + 1
	}
	l.entries.Set(index, p)
	if index >= l.next {
		l.next = index + 1
	}
	return index
}

func (l *parameterList) remove(index int) error {
	if _, ok := l.entries.Delete(index); !ok {
		return errs.Validation("parameter index %d does not exist", index)
	}
	return nil
}

func (l *parameterList) get(index int) (*parameter.Parameter, bool) {
	return l.entries.Get(index)
}

func (l *parameterList) len() int {
	return l.entries.Len()
}

// each visits parameters in insertion order and stops at the first error.
func (l *parameterList) each(fn func(index int, p *parameter.Parameter) error) error {
	for pair := l.entries.Oldest(); pair != nil; pair = pair.Next() {
		if err := fn(pair.Key, pair.Value); err != nil {
			return err
		}
	}
	return nil
}
