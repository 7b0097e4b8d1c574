package main

import (
	"errors"

	"github.com/revelaction/phascan/storage/sqlite/zombiezen"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Pool keeps one sqlite pool per database file; rules, reports and the
// parse cache may share a file.
type Pool struct {
	p map[string]*sqlitex.Pool
}

// Open returns the pool of path, creating the schemas if needed.
func (p *Pool) Open(path string, schemas ...string) (*sqlitex.Pool, error) {
	if p.p == nil {
		p.p = map[string]*sqlitex.Pool{}
	}

	pool, ok := p.p[path]
	if !ok {
		var err error
		pool, err = zombiezen.NewPool(path)
		if err != nil {
			return nil, err
		}
		p.p[path] = pool
	}

	if err := zombiezen.CreateSchemas(pool, schemas...); err != nil {
		return nil, err
	}

	return pool, nil
}

func (p *Pool) Close() error {
	var errs []error
	for path, pool := range p.p {
		if err := pool.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(p.p, path)
	}
	return errors.Join(errs...)
}
