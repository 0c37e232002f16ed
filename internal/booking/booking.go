// Package booking implements the three higher-level seat operations of
// spec.md §4.5: book, unbook, status. Each composes query-layer calls
// against the storage engine; locking is the caller's responsibility (the
// request server holds the global DB lock for the duration), per
// spec.md's "the booking layer itself does not take any locks" note.
//
// Grounded in original_source/cinemad/cinemad.c's db_book, db_unbook, and
// db_send_status.
package booking

import (
	"fmt"
	"strconv"
	"strings"

	"cinemad/internal/query"
	"cinemad/internal/store"
	"cinemad/internal/word"
)

// dataKey builds the "DATA" namespace key for seat index seat — the same
// key original_source/cinemad/cinemad.c addresses with the textual query
// "%d FROM DATA" (db_configure, db_book, db_send_status). Computed
// directly here with the same TABLE+separator+FIELD join rule
// query.joinKey uses, since the booking layer talks to the engine
// without going through the textual parser.
func dataKey(seat int) (word.Word, error) {
	return word.Pad(fmt.Sprintf("DATA\x1f%d", seat))
}

// idCounterKey is the composite key for the CONFIG namespace's
// ID_COUNTER field.
func idCounterKey() (word.Word, error) {
	return word.Pad("CONFIG\x1fID_COUNTER")
}

// seatWord reads seat's current occupant as a decimal integer: 0 if free.
func seatWord(engine *store.Engine, seat int) (int, error) {
	key, err := dataKey(seat)
	if err != nil {
		return 0, err
	}
	v, err := engine.Get(key)
	if err != nil {
		return 0, err
	}
	if v == store.NotPresent {
		return 0, nil
	}
	return parseSeatValue(v), nil
}

func parseSeatValue(v word.Word) int {
	n, err := strconv.Atoi(v.String())
	if err != nil {
		return 0
	}
	return n
}

func setSeat(engine *store.Engine, seat, id int) error {
	key, err := dataKey(seat)
	if err != nil {
		return err
	}
	value, err := word.Pad(strconv.Itoa(id))
	if err != nil {
		return err
	}
	return engine.Set(key, value)
}

// mintID increments and returns ID_COUNTER, spec.md §4.5 step 1 of book
// when the caller asked for id "0".
func mintID(engine *store.Engine) (int, error) {
	key, err := idCounterKey()
	if err != nil {
		return 0, err
	}
	v, err := engine.Get(key)
	if err != nil {
		return 0, err
	}
	current := 0
	if v != store.NotPresent {
		current = parseSeatValue(v)
	}
	next := current + 1
	nv, err := word.Pad(strconv.Itoa(next))
	if err != nil {
		return 0, err
	}
	if err := engine.Set(key, nv); err != nil {
		return 0, err
	}
	return next, nil
}

// dedupeSeats preserves the first occurrence of each seat index while
// keeping the overall order, satisfying spec.md §5's requirement that
// duplicate seats in one request never deadlock: the read-validate and
// write phases below only ever touch the per-key lock for a seat once.
func dedupeSeats(seats []int) []int {
	seen := make(map[int]bool, len(seats))
	out := make([]int, 0, len(seats))
	for _, s := range seats {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Book implements spec.md §4.5's book(id?, seats[]): mint a fresh id if
// requested, validate every seat is free, and only then write the
// chosen id into every seat, in order. Returns the reply word — the
// chosen id as a decimal word on success, or query.Failure if any seat
// was already held.
func Book(engine *store.Engine, rawID int, seats []int) (word.Word, error) {
	id := rawID
	if rawID == 0 {
		minted, err := mintID(engine)
		if err != nil {
			return query.Error, err
		}
		id = minted
	}

	ordered := dedupeSeats(seats)
	for _, s := range ordered {
		occupant, err := seatWord(engine, s)
		if err != nil {
			return query.Error, err
		}
		if occupant != 0 {
			return query.Failure, nil
		}
	}

	for _, s := range ordered {
		if err := setSeat(engine, s, id); err != nil {
			return query.Error, err
		}
	}

	reply, err := word.Pad(strconv.Itoa(id))
	if err != nil {
		return query.Error, err
	}
	return reply, nil
}

// Unbook implements spec.md §4.5's unbook(id, seats[]): validate every
// listed seat is held by id, and only then release every seat to 0.
func Unbook(engine *store.Engine, id int, seats []int) (word.Word, error) {
	ordered := dedupeSeats(seats)
	for _, s := range ordered {
		occupant, err := seatWord(engine, s)
		if err != nil {
			return query.Error, err
		}
		if occupant != id {
			return query.Failure, nil
		}
	}

	for _, s := range ordered {
		if err := setSeat(engine, s, 0); err != nil {
			return query.Error, err
		}
	}
	return query.Success, nil
}

// Status implements spec.md §4.5's status(id?): one token per seat in
// [0, total), "0" free, "1" held by id, "2" held by someone else. When id
// is omitted (hasID is false) no seat can ever report "1".
func Status(engine *store.Engine, total int, id int, hasID bool) (string, error) {
	if total <= 0 {
		return "", nil
	}
	tokens := make([]string, total)
	for i := 0; i < total; i++ {
		occupant, err := seatWord(engine, i)
		if err != nil {
			return "", err
		}
		switch {
		case occupant == 0:
			tokens[i] = "0"
		case hasID && occupant == id:
			tokens[i] = "1"
		default:
			tokens[i] = "2"
		}
	}
	return strings.Join(tokens, " "), nil
}
