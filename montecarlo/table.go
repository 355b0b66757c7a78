package montecarlo

import (
	"fmt"
	"math"
	"strconv"

	"github.com/domino14/brassgrade/stats"
)

// Counts tallies the outcomes of the trials that fell into one bucket.
type Counts struct {
	Promoted  int `json:"promoted" yaml:"promoted"`
	Stay      int `json:"stay" yaml:"stay"`
	Relegated int `json:"relegated" yaml:"relegated"`
}

func (c *Counts) add(o Outcome) {
	switch o {
	case Promoted:
		c.Promoted++
	case Stay:
		c.Stay++
	case Relegated:
		c.Relegated++
	}
}

func (c *Counts) merge(o Counts) {
	c.Promoted += o.Promoted
	c.Stay += o.Stay
	c.Relegated += o.Relegated
}

func (c Counts) Total() int {
	return c.Promoted + c.Stay + c.Relegated
}

// Table aggregates the trials of one band. A competing band has one bucket
// per finishing position; an absent band has a single bucket at the absent
// position. A Table is not safe for concurrent use: each thread fills its
// own and they are merged afterwards.
type Table struct {
	absent        bool
	firstPosition int
	buckets       []Counts

	// standings[i] counts trials where the band finished i+1 overall.
	standings []int
	standing  stats.Statistic
}

func newTable(sc *Scenario, absent bool) *Table {
	t := &Table{
		absent:    absent,
		standings: make([]int, sc.NumBands()),
	}
	if absent {
		t.firstPosition = sc.AbsentPosition()
		t.buckets = make([]Counts, 1)
	} else {
		t.firstPosition = 1
		t.buckets = make([]Counts, sc.NumPresent())
	}
	return t
}

// Add records one trial in which the band drew position, came out with
// outcome o, and finished standing overall.
func (t *Table) Add(position int, o Outcome, standing int) {
	t.buckets[position-t.firstPosition].add(o)
	t.standings[standing-1]++
	t.standing.Push(float64(standing))
}

// Merge adds the tallies of o into t. Both must belong to the same band.
func (t *Table) Merge(o *Table) {
	for i := range t.buckets {
		t.buckets[i].merge(o.buckets[i])
	}
	for i := range t.standings {
		t.standings[i] += o.standings[i]
	}
	t.standing.Merge(&o.standing)
}

// Trials is the number of trials recorded so far.
func (t *Table) Trials() int {
	n := 0
	for _, b := range t.buckets {
		n += b.Total()
	}
	return n
}

// Row is one line of a band's result table.
type Row struct {
	Position int
	// Label is the position as shown to a reader; absent rows carry an "a".
	Label  string
	Absent bool
	Counts Counts
	// Percentages of the bucket's trials. NaN when Insufficient.
	Promoted  float64
	Stay      float64
	Relegated float64
	// Insufficient is set when no trial landed in the bucket.
	Insufficient bool
}

func (r Row) Trials() int {
	return r.Counts.Total()
}

func percent(n, total int) float64 {
	return 100 * float64(n) / float64(total)
}

// Rows converts the counts to percentages, one row per bucket.
func (t *Table) Rows() []Row {
	rows := make([]Row, len(t.buckets))
	for i, c := range t.buckets {
		pos := t.firstPosition + i
		r := Row{
			Position: pos,
			Label:    strconv.Itoa(pos),
			Absent:   t.absent,
			Counts:   c,
		}
		if t.absent {
			r.Label = fmt.Sprintf("%da", pos)
		}
		total := c.Total()
		if total == 0 {
			r.Insufficient = true
			r.Promoted, r.Stay, r.Relegated = math.NaN(), math.NaN(), math.NaN()
		} else {
			r.Promoted = percent(c.Promoted, total)
			r.Stay = percent(c.Stay, total)
			r.Relegated = percent(c.Relegated, total)
		}
		rows[i] = r
	}
	return rows
}
