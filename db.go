package scstate

import (
	"bytes"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	levelopt "github.com/syndtr/goleveldb/leveldb/opt"
	"go.etcd.io/bbolt"

	"github.com/andreyvit/scstate/codec"
)

const trackCalls = true

const defaultBucket = "state"

type DB struct {
	storage storage
	bucket  string
	roots   Roots
	logger  *slog.Logger
	logf    func(format string, args ...any)
	verbose bool

	ReadCount  atomic.Uint64
	WriteCount atomic.Uint64
	CallCount  atomic.Uint64
	AbortCount atomic.Uint64

	calls     []*Ctx
	callsLock sync.Mutex
}

type Options struct {
	// Roots pins the state key prefix of named contracts. Contracts not
	// listed get the 4-byte hname of their name as the prefix.
	Roots Roots

	// Bucket is the name of the storage bucket holding all state. Defaults to
	// "state".
	Bucket string

	Logger    *slog.Logger
	Logf      func(format string, args ...any)
	Verbose   bool
	IsTesting bool
	MmapSize  int
}

// Roots maps contract names to state key prefixes.
type Roots map[string][]byte

// Validate checks that no root is a prefix of another, which would let one
// contract's keys land inside another's partition.
func (roots Roots) Validate() error {
	names := slices.Sorted(maps.Keys(roots))
	for i, a := range names {
		if len(roots[a]) == 0 {
			return fmt.Errorf("root %q is empty", a)
		}
		for _, b := range names[i+1:] {
			if err := checkRootOverlap(a, roots[a], b, roots[b]); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkRootOverlap(a string, ra []byte, b string, rb []byte) error {
	if bytes.HasPrefix(ra, rb) || bytes.HasPrefix(rb, ra) {
		return fmt.Errorf("roots %q (%x) and %q (%x) overlap", a, ra, b, rb)
	}
	return nil
}

// Root returns the state prefix for the given contract name.
func (roots Roots) Root(contract string) ([]byte, error) {
	if r, ok := roots[contract]; ok {
		return slices.Clone(r), nil
	}
	r := codec.HnameFromName(contract).Bytes()
	for name, other := range roots {
		if err := checkRootOverlap(contract, r, name, other); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (opt Options) withDefaults() Options {
	if opt.Bucket == "" {
		opt.Bucket = defaultBucket
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	return opt
}

// Open opens or creates a Bolt-backed state database at path.
func Open(path string, opt Options) (*DB, error) {
	opt = opt.withDefaults()
	if err := opt.Roots.Validate(); err != nil {
		return nil, fmt.Errorf("scstate: %w", err)
	}

	bopt := &bbolt.Options{}
	*bopt = *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 1024
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	bdb, err := bbolt.Open(path, 0666, bopt)
	if err != nil {
		return nil, fmt.Errorf("scstate: %w", err)
	}
	return open(newBoltStorage(bdb), opt)
}

// OpenLevelDB opens or creates a LevelDB-backed state database in the
// directory at path.
func OpenLevelDB(path string, opt Options) (*DB, error) {
	opt = opt.withDefaults()
	if err := opt.Roots.Validate(); err != nil {
		return nil, fmt.Errorf("scstate: %w", err)
	}
	ldb, err := leveldb.OpenFile(path, levelOptions(opt))
	if err != nil {
		return nil, fmt.Errorf("scstate: %w", err)
	}
	return open(newLevelStorage(ldb), opt)
}

func levelOptions(o Options) *levelopt.Options {
	lopt := &levelopt.Options{}
	if o.IsTesting {
		lopt.NoSync = true
		lopt.WriteBuffer = 1024 * 1024
	}
	return lopt
}

// OpenMem returns a transient in-memory database.
func OpenMem(opt Options) (*DB, error) {
	opt = opt.withDefaults()
	if err := opt.Roots.Validate(); err != nil {
		return nil, fmt.Errorf("scstate: %w", err)
	}
	return open(newMemStorage(), opt)
}

func open(s storage, opt Options) (*DB, error) {
	db := &DB{
		storage: s,
		bucket:  opt.Bucket,
		roots:   opt.Roots,
		logger:  opt.Logger,
		logf:    opt.Logf,
		verbose: opt.Verbose,
	}

	tx, err := s.BeginTx(true)
	if err == nil {
		_, err = tx.CreateBucket(db.bucket)
		if err == nil {
			err = tx.Commit()
		}
		tx.Rollback()
	}
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("scstate: initializing: %w", err)
	}
	if db.verbose {
		db.logger.Debug("scstate: opened", "bucket", db.bucket, "roots", len(db.roots))
	}
	return db, nil
}

func (db *DB) Close() error {
	err := db.storage.Close()
	if err != nil {
		return fmt.Errorf("scstate: closing: %w", err)
	}
	return nil
}

func (db *DB) Roots() Roots {
	return db.roots
}

func (db *DB) printf(format string, args ...any) {
	if db.logf != nil {
		db.logf(format, args...)
	}
}

func (db *DB) addCall(ctx *Ctx) {
	if !trackCalls {
		return
	}
	db.callsLock.Lock()
	defer db.callsLock.Unlock()
	db.calls = append(db.calls, ctx)
}

func (db *DB) removeCall(ctx *Ctx) {
	if !trackCalls {
		return
	}
	db.callsLock.Lock()
	defer db.callsLock.Unlock()

	found := slices.Index(db.calls, ctx)
	if found < 0 {
		panic("call not found in list")
	}

	n := len(db.calls)
	db.calls[found] = db.calls[n-1]
	db.calls[n-1] = nil // ensure it gets collected
	db.calls = db.calls[:n-1]
}

// DescribeOpenCalls lists the calls currently in progress, oldest first.
func (db *DB) DescribeOpenCalls() string {
	if !trackCalls {
		return "OPEN CALL TRACKING DISABLED"
	}

	db.callsLock.Lock()
	calls := slices.Clone(db.calls)
	db.callsLock.Unlock()

	if len(calls) == 0 {
		return "NO OPEN CALLS"
	}

	slices.SortFunc(calls, func(a, b *Ctx) int {
		return a.startTime.Compare(b.startTime)
	})

	now := time.Now()

	var buf strings.Builder
	fmt.Fprintf(&buf, "%d OPEN CALLS:\n", len(calls))
	for _, ctx := range calls {
		ms := now.Sub(ctx.startTime).Milliseconds()
		fmt.Fprintf(&buf, "\n---\n%s (writable=%v) open for %d ms\n", ctx.contract, ctx.writable, ms)
	}
	return buf.String()
}
