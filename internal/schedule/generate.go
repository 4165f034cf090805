package schedule

import (
	"cmp"
	"context"
	"errors"
	"math/rand/v2"
	"slices"
)

// NoTeacher fills a duty that no teacher with remaining duties could take.
const NoTeacher = "No Teacher Available"

// ErrNoRooms is returned when no room can seat at least one student.
var ErrNoRooms = errors.New("no usable rooms: every room capacity is below 2")

type slot struct {
	Date     string
	Timeslot string
}

type deptSem struct {
	Department string
	Semester   string
}

// courseGroup is the courses workbook collapsed to one row per
// (code, name, department, class, semester) with students summed.
type courseGroup struct {
	Code       string
	Name       string
	Department string
	Class      string
	Semester   string
	Students   int

	slot     slot
	assigned bool
}

// allocation seats part of a course group in one room.
type allocation struct {
	slot
	course   *courseGroup
	room     Room
	students int
	teacher1 string
	teacher2 string
}

type duty struct {
	slot
	room    string
	teacher string
	kind    string
}

// Generator turns parsed workbooks into a schedule. It holds no per-run
// state and may be shared between goroutines.
type Generator struct {
	rules Rules
	seed  int64
}

// NewGenerator returns a generator for rules. A zero seed draws a fresh
// random seed on each run; any other seed makes runs reproducible.
func NewGenerator(rules Rules, seed int64) *Generator {
	return &Generator{rules: rules, seed: seed}
}

// Generate assigns each course group a date and timeslot, seats its
// students across rooms and staffs every used room with two teachers.
func (g *Generator) Generate(ctx context.Context, in Input) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := g.rules.Validate(); err != nil {
		return nil, err
	}

	rooms := usableRooms(in.Rooms)
	if len(rooms) == 0 && len(in.Courses) > 0 {
		return nil, ErrNoRooms
	}

	rng := g.newRand()
	groups := groupCourses(in.Courses)
	g.assignSlots(groups, rng)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	allocs, unplaced := allocateRooms(groups, rooms)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	duties := allocateTeachers(allocs, in.Teachers, rng)

	return newResult(allocs, duties, len(groups), unplaced), nil
}

func (g *Generator) newRand() *rand.Rand {
	if g.seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s := uint64(g.seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

func groupCourses(courses []Course) []*courseGroup {
	type key struct{ code, name, dept, class, sem string }

	index := make(map[key]*courseGroup)
	var groups []*courseGroup
	for _, c := range courses {
		k := key{c.Code, c.Name, c.Department, c.Class, c.Semester}
		if g, ok := index[k]; ok {
			g.Students += c.Students
			continue
		}
		g := &courseGroup{
			Code:       c.Code,
			Name:       c.Name,
			Department: c.Department,
			Class:      c.Class,
			Semester:   c.Semester,
			Students:   c.Students,
		}
		index[k] = g
		groups = append(groups, g)
	}

	slices.SortStableFunc(groups, func(a, b *courseGroup) int {
		return cmp.Compare(b.Students, a.Students)
	})
	return groups
}

// assignSlots gives fixed courses their pinned slot first, then hands the
// rest shuffled slots so that no department and semester sits two exams
// on the same date. Sections of the same course share a slot.
func (g *Generator) assignSlots(groups []*courseGroup, rng *rand.Rand) {
	taken := make(map[deptSem]map[string]bool)
	mark := func(k deptSem, date string) {
		if taken[k] == nil {
			taken[k] = make(map[string]bool)
		}
		taken[k][date] = true
	}

	fixed := g.rules.fixedSlots()
	for _, cg := range groups {
		s, ok := fixed[cg.Code]
		if !ok {
			continue
		}
		k := deptSem{cg.Department, cg.Semester}
		if taken[k][s.Date] {
			continue
		}
		mark(k, s.Date)
		cg.slot, cg.assigned = s, true
	}

	type courseKey struct{ code, name, dept, sem string }
	byCourse := make(map[courseKey]slot)
	pool := newSlotPool(g.rules, rng)

	for _, cg := range groups {
		if cg.assigned {
			continue
		}
		ck := courseKey{cg.Code, cg.Name, cg.Department, cg.Semester}
		if s, ok := byCourse[ck]; ok {
			cg.slot, cg.assigned = s, true
			continue
		}

		k := deptSem{cg.Department, cg.Semester}
		s := pool.take(func(s slot) bool { return !taken[k][s.Date] })
		byCourse[ck] = s
		mark(k, s.Date)
		cg.slot, cg.assigned = s, true
	}
}

// slotPool deals date and timeslot combinations in shuffled order.
// Combinations rejected by take are discarded; an exhausted pool is
// reshuffled from the full set.
type slotPool struct {
	all   []slot
	items []slot
	rng   *rand.Rand
}

func newSlotPool(rules Rules, rng *rand.Rand) *slotPool {
	all := make([]slot, 0, len(rules.Dates)*len(rules.Timeslots))
	for _, d := range rules.Dates {
		for _, t := range rules.Timeslots {
			all = append(all, slot{Date: d, Timeslot: t})
		}
	}
	p := &slotPool{all: all, rng: rng}
	p.refill()
	return p
}

func (p *slotPool) refill() {
	p.items = slices.Clone(p.all)
	p.rng.Shuffle(len(p.items), func(i, j int) {
		p.items[i], p.items[j] = p.items[j], p.items[i]
	})
}

func (p *slotPool) take(accept func(slot) bool) slot {
	for len(p.items) > 0 {
		s := p.items[0]
		p.items = p.items[1:]
		if accept(s) {
			return s
		}
	}
	p.refill()
	s := p.items[0]
	p.items = p.items[1:]
	return s
}

// usableRooms returns rooms that can seat someone, largest first.
func usableRooms(rooms []Room) []Room {
	out := make([]Room, 0, len(rooms))
	for _, r := range rooms {
		if r.Capacity/2 > 0 {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b Room) int {
		return cmp.Compare(b.Capacity, a.Capacity)
	})
	return out
}

// allocateRooms seats each group in rooms of decreasing capacity. A room
// takes a group while its remaining seats for that slot are at least half
// its capacity, and a single group never fills more than half a room.
// It returns the allocations and the number of students left unseated.
func allocateRooms(groups []*courseGroup, rooms []Room) ([]allocation, int) {
	remaining := make(map[slot][]int)
	var allocs []allocation
	unplaced := 0

	for _, cg := range groups {
		left := cg.Students
		if left == 0 {
			continue
		}

		seats, ok := remaining[cg.slot]
		if !ok {
			seats = make([]int, len(rooms))
			for i, r := range rooms {
				seats[i] = r.Capacity
			}
			remaining[cg.slot] = seats
		}

		for i, r := range rooms {
			half := r.Capacity / 2
			if seats[i] < half {
				continue
			}
			n := min(left, half)
			allocs = append(allocs, allocation{
				slot:     cg.slot,
				course:   cg,
				room:     r,
				students: n,
			})
			seats[i] -= n
			left -= n
			if left == 0 {
				break
			}
		}
		unplaced += left
	}
	return allocs, unplaced
}

// allocateTeachers assigns two distinct teachers with duties left to each
// (slot, room) in order of first use, and writes them back onto allocs.
func allocateTeachers(allocs []allocation, teachers []Teacher, rng *rand.Rand) []duty {
	left := make(map[string]int)
	var available []string
	for _, t := range teachers {
		if t.Duties > 0 {
			available = append(available, t.Name)
			left[t.Name] = t.Duties
		}
	}

	type roomKey struct {
		slot
		room string
	}
	staffed := make(map[roomKey][2]string)
	var duties []duty

	for _, a := range allocs {
		k := roomKey{a.slot, a.room.Name}
		if _, ok := staffed[k]; ok {
			continue
		}

		order := slices.Clone(available)
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var first, second string
		for _, name := range order {
			if left[name] <= 0 {
				continue
			}
			if first == "" {
				first = name
			} else if name != first {
				second = name
				break
			}
		}

		pair := [2]string{NoTeacher, NoTeacher}
		if first != "" {
			left[first]--
			pair[0] = first
		}
		if second != "" {
			left[second]--
			pair[1] = second
		}
		staffed[k] = pair

		duties = append(duties,
			duty{slot: a.slot, room: a.room.Name, teacher: pair[0], kind: "Teacher Duty 1"},
			duty{slot: a.slot, room: a.room.Name, teacher: pair[1], kind: "Teacher Duty 2"},
		)
	}

	for i := range allocs {
		pair := staffed[roomKey{allocs[i].slot, allocs[i].room.Name}]
		allocs[i].teacher1, allocs[i].teacher2 = pair[0], pair[1]
	}
	return duties
}
