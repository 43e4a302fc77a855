package logging

import (
	"math"
	"net"
	"net/http"
	"strings"
	"time"
)

type Fields map[string]interface{}

func filterHeader(list []string, src http.Header) map[string]string {
	header := make(map[string]string)
	for _, key := range list {
		ck := http.CanonicalHeaderKey(key)
		val, ok := src[ck]
		if !ok || len(val) == 0 || val[0] == "" {
			continue
		}
		header[strings.ToLower(key)] = strings.Join(val, "|")
	}
	return header
}

func splitHostPort(hp string) (string, string) {
	host, port, err := net.SplitHostPort(hp)
	if err != nil {
		return hp, port
	}
	return host, port
}

// RoundMS returns the duration in milliseconds with three decimals.
func RoundMS(d time.Duration) float64 {
	const milliSecond = float64(time.Millisecond)
	return math.Round((float64(d)/milliSecond)*1000) / 1000
}
