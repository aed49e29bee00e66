package bootstrap

import "context"

// Storage is what modules receive from bootstrap: the *sqlx.DB when a
// database is connected, nil otherwise. Modules must handle both.
type Storage any

// Seeder writes reference data into storage. Seeders run in order after
// migrations and the first error aborts bootstrap.
type Seeder interface {
	Seed(ctx context.Context, storage Storage) error
}

// SeederFunc adapts a bare function to the Seeder interface.
type SeederFunc func(ctx context.Context, storage Storage) error

// Seed executes the underlying function.
func (f SeederFunc) Seed(ctx context.Context, storage Storage) error {
	return f(ctx, storage)
}

type namedSeeder struct {
	name string
	SeederFunc
}

func (s namedSeeder) Name() string { return s.name }

// NamedSeeder labels fn for the bootstrap log.
func NamedSeeder(name string, fn SeederFunc) Seeder {
	return namedSeeder{name: name, SeederFunc: fn}
}

func seederName(s Seeder) string {
	if n, ok := s.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "anonymous"
}

// ServiceProvider builds the application services once every seeder has run.
type ServiceProvider interface {
	Provide(ctx context.Context, cfg any, storage Storage) (any, error)
}

// ServiceProviderFunc adapts a function to the ServiceProvider interface.
type ServiceProviderFunc func(ctx context.Context, cfg any, storage Storage) (any, error)

// Provide executes the underlying function.
func (f ServiceProviderFunc) Provide(ctx context.Context, cfg any, storage Storage) (any, error) {
	return f(ctx, cfg, storage)
}

// TypedServiceProviderFunc is a ServiceProvider whose result has a static
// type; Result.Services then holds a T.
type TypedServiceProviderFunc[T any] func(ctx context.Context, cfg any, storage Storage) (T, error)

// Provide satisfies the ServiceProvider interface.
func (f TypedServiceProviderFunc[T]) Provide(ctx context.Context, cfg any, storage Storage) (any, error) {
	return f(ctx, cfg, storage)
}

// Modules are the application hooks bootstrap runs after infrastructure.
type Modules struct {
	Seeders  []Seeder
	Services ServiceProvider
}
