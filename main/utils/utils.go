package utils

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

type ParseJsonValue[T any] struct {
	Value T
	Error error
}

func ParseJson[T any](data []byte) ParseJsonValue[T] {
	parsed := ParseJsonValue[T]{}
	if err := json.Unmarshal(data, &parsed.Value); err != nil {
		return ParseJsonValue[T]{Error: err}
	}
	return parsed
}

// LocalIP returns the first non-loopback IPv4 address, or "localhost".
func LocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip := ipNet.IP.To4(); ip != nil {
			return ip.String()
		}
	}
	return "localhost"
}

func Hostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return ""
	}
	return hostname
}

// Healthcheck succeeds when url answers 200. Certificates are not verified,
// the probe targets this host and the relay is usually run with a self-signed one.
func Healthcheck(url string, timeout time.Duration) error {
	client := resty.New().
		SetTimeout(timeout).
		SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	res, err := client.R().
		SetHeader("Accept", "application/json").
		Get(url)
	if err != nil {
		return err
	}
	if res.StatusCode() != http.StatusOK {
		return fmt.Errorf("%s answered %s", url, res.Status())
	}
	return nil
}
