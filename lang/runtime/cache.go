package runtime

import (
	"sync"

	"github.com/expr-lang/expr/vm"
	"github.com/zeebo/xxh3"
)

// programCache memoizes compiled programs keyed by the xxh3 hash of their
// expr-lang code. Each code is compiled at most once, even when requested
// by several goroutines at the same time.
type programCache struct {
	entries sync.Map // uint64 -> *program
}

type program struct {
	once sync.Once
	code string
	prog *vm.Program
	err  error
}

// load returns the program for code, calling compile on the first request.
// A hash collision with different code bypasses the cache.
func (c *programCache) load(
	code string,
	compile func() (*vm.Program, error),
) (prog *vm.Program, hit bool, err error) {
	entry := &program{code: code}

	value, hit := c.entries.LoadOrStore(xxh3.HashString(code), entry)

	p, _ := value.(*program)
	if p.code != code {
		prog, err = compile()

		return prog, false, err
	}

	p.once.Do(func() { p.prog, p.err = compile() })

	return p.prog, hit, p.err
}

// len reports the number of cached programs.
func (c *programCache) len() int {
	n := 0

	c.entries.Range(func(any, any) bool {
		n++

		return true
	})

	return n
}

// clear drops every cached program.
func (c *programCache) clear() { c.entries.Clear() }
