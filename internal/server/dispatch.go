package server

import (
	"strconv"
	"strings"

	"cinemad/internal/booking"
	"cinemad/internal/query"
)

// adminPrefix marks the SPEC_FULL.md §6.1 administrative request forms,
// sent under the same '~' byte as status but run under the DB writer lock
// and only honored on connections from the Unix-domain listener.
const adminPrefix = "admin:"

// handleRequest dispatches on the first byte of request per spec.md §6,
// acquiring the global DB lock in the mode that byte implies, and returns
// the reply string to send back. Grounded in
// original_source/cinemad/cinemad.c's request_handler dispatch block.
// isAdmin reports whether the connection is allowed to use the
// SPEC_FULL.md §6.1 administrative request forms (true only for the
// Unix-domain listener).
func handleRequest(ctx *Context, request string, isAdmin bool) string {
	if request == "" {
		return query.Error.String()
	}

	switch request[0] {
	case '#':
		ctx.DBLock.Lock()
		defer ctx.DBLock.Unlock()
		return dispatchBook(ctx, request[1:])
	case '@':
		ctx.DBLock.Lock()
		defer ctx.DBLock.Unlock()
		return dispatchUnbook(ctx, request[1:])
	case '~':
		payload := request[1:]
		if strings.HasPrefix(payload, adminPrefix) {
			if !isAdmin {
				return query.Error.String()
			}
			ctx.DBLock.Lock()
			defer ctx.DBLock.Unlock()
			return dispatchAdmin(ctx, strings.TrimPrefix(payload, adminPrefix))
		}
		ctx.DBLock.RLock()
		defer ctx.DBLock.RUnlock()
		return dispatchStatus(ctx, payload)
	default:
		ctx.DBLock.RLock()
		defer ctx.DBLock.RUnlock()
		return query.Execute(ctx.Engine, request).String()
	}
}

// dispatchAdmin implements the "snapshot <name>" and "check" operator
// commands of SPEC_FULL.md §6.1.
func dispatchAdmin(ctx *Context, payload string) string {
	fields := strings.Fields(payload)
	if len(fields) == 0 {
		return query.Error.String()
	}
	switch fields[0] {
	case "snapshot":
		if len(fields) != 2 {
			return query.Error.String()
		}
		if err := ctx.Engine.Snapshot(fields[1]); err != nil {
			ctx.Log.Errorw("admin snapshot failed", "err", err)
			return query.Error.String()
		}
		return query.Success.String()
	case "check":
		report, err := ctx.Engine.CheckConsistency()
		if err != nil {
			ctx.Log.Errorw("admin check failed", "err", err)
			return query.Error.String()
		}
		if report.Consistent {
			return query.Success.String()
		}
		return query.Failure.String()
	default:
		return query.Error.String()
	}
}

// dispatchBook parses "ID seat1 seat2 ..." and calls booking.Book.
// ID "0" means "mint a fresh one" per spec.md §4.5.
func dispatchBook(ctx *Context, payload string) string {
	tokens := strings.Fields(payload)
	if len(tokens) < 2 {
		return query.Error.String()
	}
	id, err := strconv.Atoi(tokens[0])
	if err != nil || id < 0 {
		return query.Error.String()
	}
	seats, ok := parseSeats(tokens[1:], ctx.Total)
	if !ok {
		return query.Error.String()
	}
	reply, err := booking.Book(ctx.Engine, id, seats)
	if err != nil {
		return query.Error.String()
	}
	return reply.String()
}

// dispatchUnbook parses "ID seat1 seat2 ..." and calls booking.Unbook.
func dispatchUnbook(ctx *Context, payload string) string {
	tokens := strings.Fields(payload)
	if len(tokens) < 2 {
		return query.Error.String()
	}
	id, err := strconv.Atoi(tokens[0])
	if err != nil || id <= 0 {
		return query.Error.String()
	}
	seats, ok := parseSeats(tokens[1:], ctx.Total)
	if !ok {
		return query.Error.String()
	}
	reply, err := booking.Unbook(ctx.Engine, id, seats)
	if err != nil {
		return query.Error.String()
	}
	return reply.String()
}

// dispatchStatus parses an empty payload or a decimal id and calls
// booking.Status.
func dispatchStatus(ctx *Context, payload string) string {
	payload = strings.TrimSpace(payload)
	hasID := payload != ""
	id := 0
	if hasID {
		parsed, err := strconv.Atoi(payload)
		if err != nil {
			return query.Error.String()
		}
		id = parsed
	}
	status, err := booking.Status(ctx.Engine, ctx.Total, id, hasID)
	if err != nil {
		return query.Error.String()
	}
	return status
}

// parseSeats validates and converts seat index tokens, rejecting any
// seat outside [0, total) per spec.md §4.5.
func parseSeats(tokens []string, total int) ([]int, bool) {
	if len(tokens) == 0 {
		return nil, false
	}
	seats := make([]int, 0, len(tokens))
	for _, t := range tokens {
		n, err := strconv.Atoi(t)
		if err != nil || n < 0 || n >= total {
			return nil, false
		}
		seats = append(seats, n)
	}
	return seats, true
}
