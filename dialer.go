package main

import (
	"net"
	"sync/atomic"
	"time"

	"github.com/go-log/log"

	"github.com/shadowpipe/go-shadowpipe/core"
	"github.com/shadowpipe/go-shadowpipe/ssaead"
)

type Dialer interface {
	Dial(network, address string) (net.Conn, error)
}

type dialer struct {
	dialTime    int64        // time to dial in nanoseconds (exponetially smoothed)
	lastUpdated atomic.Value // of time.Time
	server      string
	profile     core.Profile
	key         []byte
}

// NewDialer builds a dialer for one ss:// server URL carrying its own
// cipher and password.
func NewDialer(u string, fallbackKey []byte) (*dialer, error) {
	addr, cipher, password, err := parseURL(u)
	if err != nil {
		return nil, err
	}
	profile, err := core.PickProfile(cipher)
	if err != nil {
		return nil, err
	}
	key := fallbackKey
	if len(key) == 0 {
		key = core.Key(password, profile.KeySize)
	}
	d := &dialer{server: addr, profile: profile, key: key}
	d.lastUpdated.Store(time.Time{})
	return d, nil
}

// Dial connects to the server, wraps the connection with the encrypted
// channel and sends the target address as the first payload.
func (d *dialer) Dial(network, address string) (net.Conn, error) {
	c, err := d.dial()
	if err != nil {
		return c, err
	}
	c.(*net.TCPConn).SetKeepAlive(true)
	sc, err := ssaead.NewConn(c, d.profile, d.key, nil)
	if err != nil {
		c.Close()
		return nil, err
	}
	if err := writeTarget(sc, address); err != nil {
		sc.Close()
		return nil, err
	}
	return sc, nil
}

func (d *dialer) dial() (net.Conn, error) {
	const timeout = 2 * time.Second
	const wt = 4

	t0 := time.Now()
	c, err := net.DialTimeout("tcp", d.server, timeout)
	td := time.Since(t0)
	if err != nil {
		td = timeout // penality
	}

	new := td.Nanoseconds()
	if old := atomic.LoadInt64(&d.dialTime); old > 0 {
		new = (wt*old + new) / (wt + 1) // Exponentially Weighted Moving Average
	}
	atomic.StoreInt64(&d.dialTime, new)
	log.Logf("probe %s [%d ms] err=%v", d.server, new/1e6, err)
	d.lastUpdated.Store(time.Now())
	return c, err
}

// Actively measure average dial time
func (d *dialer) probe() {
	const interval = 10 * time.Second
	for {
		age := time.Since(d.lastUpdated.Load().(time.Time))
		if age > interval {
			if c, err := d.dial(); err == nil {
				c.Close()
			}
		} else {
			time.Sleep(interval - age)
		}
	}
}

type priorityDialer struct {
	dialers []*dialer
}

// NewPriorityDialer probes every server and dials through the fastest one.
func NewPriorityDialer(key []byte, u ...string) (*priorityDialer, error) {
	var dialers []*dialer

	for _, each := range u {
		d, err := NewDialer(each, key)
		if err != nil {
			return nil, err
		}
		dialers = append(dialers, d)
	}

	for _, d := range dialers {
		go d.probe()
	}

	return &priorityDialer{dialers}, nil
}

const maxInt64 = int64(1<<63 - 1)

func (d *priorityDialer) Dial(network, address string) (net.Conn, error) {
	tMin := maxInt64
	var dMin *dialer
	for _, each := range d.dialers {
		if t := atomic.LoadInt64(&each.dialTime); t < tMin {
			dMin, tMin = each, t
		}
	}
	log.Logf("best server %s [%d ms]", dMin.server, tMin/1e6)
	return dMin.Dial(network, address)
}
