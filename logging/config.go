package logging

const (
	TypeAccess   = "authproxy_access"
	TypeDaemon   = "authproxy"
	TypeUpstream = "authproxy_upstream"
)

type Config struct {
	Format string
	Level  string
	Pretty bool

	// ParentFieldKey nests all fields of json logs below this key.
	ParentFieldKey  string
	RequestHeaders  []string
	ResponseHeaders []string
	TypeFieldKey    string
}

var DefaultConfig = &Config{
	Format:          "common",
	Level:           "info",
	RequestHeaders:  []string{"User-Agent", "Accept", "Content-Type"},
	ResponseHeaders: []string{"Content-Type", "Content-Length"},
}
