package scstate

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/andreyvit/scstate/codec"
	"github.com/andreyvit/scstate/kvo"
)

// Ctx is the environment of a single call: the call's parameters, the
// contract's state partition and a fresh results dictionary.
type Ctx struct {
	db        *DB
	contract  string
	writable  bool
	startTime time.Time

	params  kvo.Location
	state   kvo.Location
	results kvo.Dict
}

func (ctx *Ctx) DB() *DB              { return ctx.db }
func (ctx *Ctx) Contract() string     { return ctx.contract }
func (ctx *Ctx) Hname() codec.Hname   { return codec.HnameFromName(ctx.contract) }
func (ctx *Ctx) Writable() bool       { return ctx.writable }
func (ctx *Ctx) Params() kvo.Location { return ctx.params }
func (ctx *Ctx) State() kvo.Location  { return ctx.state }

func (ctx *Ctx) Results() kvo.Location {
	return ctx.results.Root()
}

// Logger returns the DB logger annotated with the contract name.
func (ctx *Ctx) Logger() *slog.Logger {
	return ctx.db.logger.With("contract", ctx.contract)
}

func safelyCall(fn func(*Ctx) error, ctx *Ctx) (err error) {
	defer func() {
		if p := recover(); p != nil {
			e, _ := p.(error)
			err = &AbortError{ctx.contract, p, e, string(debug.Stack())}
		}
	}()
	return fn(ctx)
}

// Call runs f against the contract's state in a writable transaction. If f
// returns an error or panics, nothing it wrote is kept and no results are
// returned. Writable calls are serialized by the storage backend.
func (db *DB) Call(contract string, params kvo.Dict, f func(ctx *Ctx) error) (kvo.Dict, error) {
	return db.invoke(contract, true, params, f)
}

// View runs f in a read-only transaction. Writes to state panic with
// ErrReadOnly, which View returns wrapped in *AbortError.
func (db *DB) View(contract string, params kvo.Dict, f func(ctx *Ctx) error) (kvo.Dict, error) {
	return db.invoke(contract, false, params, f)
}

func (db *DB) invoke(contract string, writable bool, params kvo.Dict, f func(ctx *Ctx) error) (kvo.Dict, error) {
	root, err := db.roots.Root(contract)
	if err != nil {
		return nil, fmt.Errorf("scstate: %w", err)
	}

	stx, err := db.storage.BeginTx(writable)
	if err != nil {
		return nil, fmt.Errorf("scstate: begin: %w", err)
	}
	defer stx.Rollback()

	b := stx.Bucket(db.bucket)
	if b == nil {
		return nil, fmt.Errorf("scstate: %s: %w", db.bucket, ErrBucketNotFound)
	}
	store := &bucketStore{db: db, b: b, writable: writable}

	if params == nil {
		params = kvo.Dict{}
	}
	ctx := &Ctx{
		db:        db,
		contract:  contract,
		writable:  writable,
		startTime: time.Now(),
		params:    kvo.NewLocation(readOnlyStore{params}, nil),
		state:     kvo.NewLocation(store, root),
		results:   make(kvo.Dict),
	}

	reads, writes := db.ReadCount.Load(), db.WriteCount.Load()
	db.addCall(ctx)
	err = safelyCall(f, ctx)
	db.removeCall(ctx)

	if err == nil && writable {
		err = stx.Commit()
		if err != nil {
			err = fmt.Errorf("scstate: commit: %w", err)
		}
	}

	elapsed := time.Since(ctx.startTime)
	if err != nil {
		db.AbortCount.Add(1)
		var ae *AbortError
		if errors.As(err, &ae) {
			db.logger.Warn("scstate: call aborted", "contract", contract, hexAttr("root", root), "err", err)
			if db.verbose {
				db.printf("%s: abort stack:\n%s", contract, ae.Stack)
			}
		} else if db.verbose {
			db.logger.Debug("scstate: call failed", "contract", contract, "err", err)
		}
		return nil, err
	}

	db.CallCount.Add(1)
	if db.verbose {
		db.logger.Debug("scstate: call",
			"contract", contract,
			"writable", writable,
			"elapsed", elapsed,
			"reads", db.ReadCount.Load()-reads,
			"writes", db.WriteCount.Load()-writes,
			"results", len(ctx.results))
	}
	return ctx.results, nil
}
