package env

type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

func (e Environment) IsDevelopment() bool { return e == Development }
func (e Environment) IsProduction() bool  { return e == Production }

// Valid reports whether e is a known environment.
func (e Environment) Valid() bool {
	return e == Development || e == Production
}

func (e Environment) String() string { return string(e) }
