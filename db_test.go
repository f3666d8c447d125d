package scstate

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andreyvit/scstate/codec"
	"github.com/andreyvit/scstate/kvo"
)

func init() {
	slog.SetLogLoggerLevel(slog.LevelDebug)
}

type opener func(t testing.TB, opt Options) *DB

var backends = []struct {
	name string
	open opener
}{
	{"mem", setupMem},
	{"bolt", setupBolt},
	{"leveldb", setupLevelDB},
}

func setupMem(t testing.TB, opt Options) *DB {
	t.Helper()
	opt.IsTesting = true
	db := must(OpenMem(opt))
	t.Cleanup(func() { db.Close() })
	return db
}

func setupBolt(t testing.TB, opt Options) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.db")
	t.Logf("DB: %s", path)
	opt.IsTesting = true
	db := must(Open(path, opt))
	t.Cleanup(func() { db.Close() })
	return db
}

func setupLevelDB(t testing.TB, opt Options) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.ldb")
	t.Logf("DB: %s", path)
	opt.IsTesting = true
	db := must(OpenLevelDB(path, opt))
	t.Cleanup(func() { db.Close() })
	return db
}

func forEachBackend(t *testing.T, f func(t *testing.T, open opener)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			f(t, b.open)
		})
	}
}

func counter(ctx *Ctx) kvo.Mutable[uint64] {
	return kvo.NewMutable(ctx.State().Field("counter"), codec.TUint64)
}

func increment(ctx *Ctx) error {
	c := counter(ctx)
	c.SetValue(c.Value() + 1)
	kvo.NewMutable(ctx.Results().Field("counter"), codec.TUint64).SetValue(c.Value())
	return nil
}

func readCounter(t testing.TB, db *DB, contract string) uint64 {
	t.Helper()
	var v uint64
	_, err := db.View(contract, nil, func(ctx *Ctx) error {
		v = counter(ctx).Value()
		return nil
	})
	require.NoError(t, err)
	return v
}

func TestCall_commits(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open opener) {
		db := open(t, Options{})
		for i := 1; i <= 3; i++ {
			res, err := db.Call("counter", nil, increment)
			require.NoError(t, err)
			require.Equal(t, codec.TUint64.ToBytes(uint64(i)), res["counter"])
		}
		require.Equal(t, uint64(3), readCounter(t, db, "counter"))
		require.Equal(t, uint64(4), db.CallCount.Load())
		require.NotZero(t, db.WriteCount.Load())
		require.NotZero(t, db.ReadCount.Load())
	})
}

func TestCall_params_and_results(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open opener) {
		db := open(t, Options{})
		params := kvo.Dict{}
		kvo.NewMutable(params.Root().Field("name"), codec.TString).SetValue("Alice")
		kvo.NewMutable(params.Root().Field("age"), codec.TUint8).SetValue(30)

		res, err := db.Call("greeter", params, func(ctx *Ctx) error {
			name := kvo.NewImmutable(ctx.Params().Field("name"), codec.TString).Value()
			age := kvo.NewImmutable(ctx.Params().Field("age"), codec.TUint8).Value()
			greetings := kvo.NewArray(ctx.State().Field("greetings"), kvo.Scalar(codec.TString))
			greetings.Append().SetValue(fmt.Sprintf("hello %s (%d)", name, age))
			kvo.NewMutable(ctx.Results().Field("count"), codec.TUint32).SetValue(greetings.Length())
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, uint32(1), kvo.NewImmutable(res.Root().Field("count"), codec.TUint32).Value())

		_, err = db.View("greeter", nil, func(ctx *Ctx) error {
			greetings := kvo.NewImmutableArray(ctx.State().Field("greetings"), kvo.ImmutableScalar(codec.TString))
			require.Equal(t, uint32(1), greetings.Length())
			require.Equal(t, "hello Alice (30)", greetings.Get(0).Value())
			return nil
		})
		require.NoError(t, err)
	})
}

func TestCall_abort_rolls_back(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open opener) {
		db := open(t, Options{})
		_, err := db.Call("c", nil, increment)
		require.NoError(t, err)

		res, err := db.Call("c", nil, func(ctx *Ctx) error {
			increment(ctx)
			ctx.State().Field("bad").Set([]byte{1, 2, 3})
			kvo.NewImmutable(ctx.State().Field("bad"), codec.TInt32).Value()
			return nil
		})
		require.Nil(t, res)
		require.True(t, IsAbort(err))
		require.True(t, codec.IsDataError(err))
		require.Contains(t, err.Error(), "c: aborted")

		var ae *AbortError
		require.ErrorAs(t, err, &ae)
		require.Equal(t, "c", ae.Contract)
		require.NotEmpty(t, ae.Stack)

		require.Equal(t, uint64(1), readCounter(t, db, "c"))
		_, err = db.View("c", nil, func(ctx *Ctx) error {
			require.False(t, ctx.State().Field("bad").Exists())
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, uint64(1), db.AbortCount.Load())
	})
}

func TestCall_error_rolls_back(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open opener) {
		db := open(t, Options{})
		boom := errors.New("boom")
		_, err := db.Call("c", nil, func(ctx *Ctx) error {
			increment(ctx)
			return boom
		})
		require.ErrorIs(t, err, boom)
		require.False(t, IsAbort(err))
		require.Equal(t, uint64(0), readCounter(t, db, "c"))
	})
}

func TestCall_index_error_aborts(t *testing.T) {
	db := setupMem(t, Options{})
	_, err := db.Call("c", nil, func(ctx *Ctx) error {
		kvo.NewArray(ctx.State().Field("a"), kvo.Scalar(codec.TBool)).Get(0)
		return nil
	})
	var ie *kvo.IndexError
	require.ErrorAs(t, err, &ie)
	require.Contains(t, err.Error(), "use Append")
}

func TestView_is_read_only(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open opener) {
		db := open(t, Options{})
		_, err := db.View("c", nil, increment)
		require.ErrorIs(t, err, ErrReadOnly)
		require.True(t, IsAbort(err))
		require.Equal(t, uint64(0), readCounter(t, db, "c"))
	})
}

func TestParams_are_read_only(t *testing.T) {
	db := setupMem(t, Options{})
	params := kvo.Dict{"x": []byte{1}}
	_, err := db.Call("c", params, func(ctx *Ctx) error {
		ctx.Params().Field("x").Delete()
		return nil
	})
	require.ErrorIs(t, err, ErrReadOnly)
	require.Equal(t, kvo.Dict{"x": []byte{1}}, params)
}

func TestCall_concurrent_writers(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open opener) {
		db := open(t, Options{})
		const workers, calls = 8, 5
		var wg sync.WaitGroup
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range calls {
					_, err := db.Call("counter", nil, increment)
					if err != nil {
						t.Error(err)
					}
				}
			}()
		}
		wg.Wait()
		require.Equal(t, uint64(workers*calls), readCounter(t, db, "counter"))
	})
}

func TestPartitions(t *testing.T) {
	forEachBackend(t, func(t *testing.T, open opener) {
		db := open(t, Options{
			Roots: Roots{"pinned": []byte("p.")},
		})
		_, err := db.Call("pinned", nil, increment)
		require.NoError(t, err)
		_, err = db.Call("other", nil, increment)
		require.NoError(t, err)
		_, err = db.Call("other", nil, increment)
		require.NoError(t, err)

		require.Equal(t, uint64(1), readCounter(t, db, "pinned"))
		require.Equal(t, uint64(2), readCounter(t, db, "other"))
		require.Equal(t, uint64(0), readCounter(t, db, "third"))

		n, err := db.KeyCount()
		require.NoError(t, err)
		require.Equal(t, 2, n)

		require.Contains(t, db.Dump(), "\"p.counter\" = 0100000000000000\n")

		dump := db.DumpContract("other")
		require.Contains(t, dump, "other ("+codec.HnameFromName("other").String()+", root ")
		require.True(t, strings.HasSuffix(dump, "\n\"counter\" = 0200000000000000\n"), dump)
	})
}

func TestRoots(t *testing.T) {
	require.NoError(t, Roots{"a": []byte("a."), "b": []byte("b.")}.Validate())
	require.NoError(t, Roots(nil).Validate())
	require.Error(t, Roots{"a": []byte("ab"), "b": []byte("a")}.Validate())
	require.Error(t, Roots{"a": []byte("x"), "b": []byte("x")}.Validate())
	require.Error(t, Roots{"a": nil}.Validate())

	_, err := OpenMem(Options{Roots: Roots{"a": []byte("x"), "b": []byte("xy")}})
	require.ErrorContains(t, err, "overlap")

	roots := Roots{"pinned": []byte("p.")}
	r, err := roots.Root("pinned")
	require.NoError(t, err)
	require.Equal(t, []byte("p."), r)
	r, err = roots.Root("accounts")
	require.NoError(t, err)
	require.Equal(t, codec.HnameFromName("accounts").Bytes(), r)

	clash := Roots{"pinned": codec.HnameFromName("accounts").Bytes()[:2]}
	_, err = clash.Root("accounts")
	require.Error(t, err)

	db := setupMem(t, Options{Roots: clash})
	_, err = db.Call("accounts", nil, increment)
	require.Error(t, err)
	require.False(t, IsAbort(err))
}

func TestPersistence(t *testing.T) {
	for _, tc := range []struct {
		name string
		open func(path string, opt Options) (*DB, error)
	}{
		{"bolt", Open},
		{"leveldb", OpenLevelDB},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "state")
			db := must(tc.open(path, Options{IsTesting: true}))
			_, err := db.Call("c", nil, increment)
			require.NoError(t, err)
			require.NoError(t, db.Close())

			db = must(tc.open(path, Options{IsTesting: true}))
			defer db.Close()
			require.Equal(t, uint64(1), readCounter(t, db, "c"))
		})
	}
}

func TestDescribeOpenCalls(t *testing.T) {
	db := setupMem(t, Options{})
	require.Equal(t, "NO OPEN CALLS", db.DescribeOpenCalls())
	_, err := db.View("inspector", nil, func(ctx *Ctx) error {
		s := db.DescribeOpenCalls()
		require.True(t, strings.HasPrefix(s, "1 OPEN CALLS:"), s)
		require.Contains(t, s, "inspector (writable=false)")
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "NO OPEN CALLS", db.DescribeOpenCalls())
}

func TestLogging(t *testing.T) {
	var logBuf bytes.Buffer
	var printed []string
	db := setupMem(t, Options{
		Logger:  slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{Level: slog.LevelDebug})),
		Logf:    func(format string, args ...any) { printed = append(printed, fmt.Sprintf(format, args...)) },
		Verbose: true,
	})

	_, err := db.Call("c", nil, func(ctx *Ctx) error {
		ctx.Logger().Info("inside")
		return increment(ctx)
	})
	require.NoError(t, err)
	require.Contains(t, logBuf.String(), "msg=inside contract=c")
	require.Contains(t, logBuf.String(), "msg=\"scstate: call\" contract=c writable=true")

	_, err = db.Call("c", nil, func(ctx *Ctx) error {
		panic("bad thing")
	})
	require.Error(t, err)
	require.Contains(t, logBuf.String(), "msg=\"scstate: call aborted\" contract=c")
	require.Len(t, printed, 1)
	require.Contains(t, printed[0], "c: abort stack:")
}

func TestCtx(t *testing.T) {
	db := setupMem(t, Options{})
	_, err := db.Call("accounts", nil, func(ctx *Ctx) error {
		require.Same(t, db, ctx.DB())
		require.Equal(t, "accounts", ctx.Contract())
		require.Equal(t, codec.HnameFromName("accounts"), ctx.Hname())
		require.True(t, ctx.Writable())
		require.Equal(t, ctx.Hname().Bytes(), ctx.State().Path())
		require.Empty(t, ctx.Results().Path())
		return nil
	})
	require.NoError(t, err)
}

func TestClosed(t *testing.T) {
	db := must(OpenMem(Options{}))
	require.NoError(t, db.Close())
	_, err := db.Call("c", nil, increment)
	require.Error(t, err)
}
