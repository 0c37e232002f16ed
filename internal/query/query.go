// Package query implements the tiny domain query language of spec.md
// §4.4: GET/SET/ADD over the storage engine, plus the structured
// "FIELD FROM TABLE" form used for the logical schema (NETWORK, CONFIG,
// DATA namespaces).
//
// Grounded in original_source/cinemad/database.c (get_parsed_query,
// database_execute, database_get, database_set).
package query

import (
	"strings"

	"cinemad/internal/store"
	"cinemad/internal/word"
)

// Reply words spec.md §4.4 reserves.
var (
	Success = word.MustPad("SUCCESS")
	Failure = word.MustPad("FAILURE")
	Error   = word.MustPad("ERROR")
)

// tableFieldSep joins TABLE and FIELD into one composite key. It is the
// ASCII unit separator (0x1F), which never appears in a seat index or any
// of the logical schema's literal tokens, so the join is injective —
// spec.md §4.4's only requirement for the structured-key encoding (an
// Open Question in spec.md §9, resolved here).
const tableFieldSep = "\x1f"

// joinKey builds the composite key for "FIELD FROM TABLE".
func joinKey(table, field string) (word.Word, error) {
	return word.Pad(table + tableFieldSep + field)
}

// Execute parses request and runs it against engine, returning the single
// reply word spec.md §4.4 defines: Success, Failure, Error, or the raw
// value word for a successful GET.
func Execute(engine *store.Engine, request string) word.Word {
	tokens := strings.Split(request, " ")
	if len(tokens) == 0 || tokens[0] == "" {
		return Error
	}

	op := tokens[0]
	rest := tokens[1:]

	switch op {
	case "GET":
		return execGet(engine, rest)
	case "SET":
		return execSet(engine, rest)
	case "ADD":
		return execAdd(engine, rest)
	default:
		return Error
	}
}

// execGet handles "GET KEY" and the structured "GET FIELD FROM TABLE".
func execGet(engine *store.Engine, tokens []string) word.Word {
	key, ok := resolveKey(tokens)
	if !ok {
		return Error
	}
	value, err := engine.Get(key)
	if err != nil {
		return Error
	}
	if value == store.NotPresent {
		return Failure
	}
	return value
}

// execSet handles "SET KEY AS VALUE" and "SET FIELD FROM TABLE AS VALUE".
func execSet(engine *store.Engine, tokens []string) word.Word {
	asIdx := indexOf(tokens, "AS")
	if asIdx < 0 || asIdx == len(tokens)-1 {
		return Error
	}
	keyTokens := tokens[:asIdx]
	valueTokens := tokens[asIdx+1:]
	if len(valueTokens) != 1 {
		return Error
	}

	key, ok := resolveKey(keyTokens)
	if !ok {
		return Error
	}
	value, err := word.Pad(valueTokens[0])
	if err != nil {
		return Error
	}
	if err := engine.Set(key, value); err != nil {
		return Error
	}
	return Success
}

// execAdd handles "ADD KEY" (allocate with an empty value) and the
// structured "ADD FIELD FROM TABLE", as well as "ADD TABLE" which creates
// the table namespace itself (spec.md §4.4: "ADD TABLE creates the table
// namespace itself" — implemented as allocating the bare TABLE key).
func execAdd(engine *store.Engine, tokens []string) word.Word {
	key, ok := resolveKey(tokens)
	if !ok {
		return Error
	}
	if err := engine.Add(key); err != nil {
		return Error
	}
	return Success
}

// resolveKey accepts either a single KEY token or a FIELD "FROM" TABLE
// triple and returns the resolved engine key.
func resolveKey(tokens []string) (key word.Word, ok bool) {
	switch len(tokens) {
	case 1:
		if tokens[0] == "" {
			return word.Word{}, false
		}
		k, err := word.Pad(tokens[0])
		if err != nil {
			return word.Word{}, false
		}
		return k, true
	case 3:
		if tokens[1] != "FROM" {
			return word.Word{}, false
		}
		k, err := joinKey(tokens[2], tokens[0])
		if err != nil {
			return word.Word{}, false
		}
		return k, true
	default:
		return word.Word{}, false
	}
}

func indexOf(tokens []string, target string) int {
	for i, t := range tokens {
		if t == target {
			return i
		}
	}
	return -1
}
