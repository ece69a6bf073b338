package main

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/go-log/log"

	"github.com/shadowpipe/go-shadowpipe/core"
	"github.com/shadowpipe/go-shadowpipe/ssaead"
)

// The first payload of a client connection is the target address as a
// 1-byte-length-prefixed host:port string.

const maxTargetLen = 255

var errTargetTooLong = errors.New("target address too long")

func writeTarget(w io.Writer, address string) error {
	if len(address) > maxTargetLen {
		return errTargetTooLong
	}
	buf := make([]byte, 1+len(address))
	buf[0] = byte(len(address))
	copy(buf[1:], address)
	_, err := w.Write(buf)
	return err
}

func readTarget(r io.Reader) (string, error) {
	var n [1]byte
	if _, err := io.ReadFull(r, n[:]); err != nil {
		return "", err
	}
	buf := make([]byte, n[0])
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// Create a TCP tunnel from addr to target via the dialer.
func tcpTun(addr, target string, d Dialer) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Logf("failed to listen on %s: %v", addr, err)
		return
	}

	log.Logf("TCP tunnel %s <-> %s", addr, target)
	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Logf("failed to accept: %s", err)
			continue
		}
		go tcpTunHandle(conn, target, d)
	}
}

func tcpTunHandle(c net.Conn, target string, d Dialer) {
	defer c.Close()

	sc, err := d.Dial("tcp", target)
	if err != nil {
		log.Logf("failed to reach %s: %v", target, err)
		return
	}
	defer sc.Close()

	log.Logf("proxy %s <-> %s", c.RemoteAddr(), target)
	_, _, err = relay(sc, c)
	if err != nil {
		if err, ok := err.(net.Error); ok && err.Timeout() {
			return // ignore i/o timeout
		}
		log.Logf("relay error: %v", err)
	}
}

// Listen on addr for encrypted connections, decrypt and forward to the
// target each client asks for.
func tcpRemote(addr string, profile core.Profile, key []byte, pool *ssaead.SaltPool) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Logf("failed to listen on %s: %v", addr, err)
		return
	}

	log.Logf("listening TCP on %s", addr)
	for {
		conn, err := ln.Accept()
		if err != nil {
			log.Logf("failed to accept: %s", err)
			continue
		}
		go tcpRemoteHandle(conn, profile, key, pool)
	}
}

func tcpRemoteHandle(c net.Conn, profile core.Profile, key []byte, pool *ssaead.SaltPool) {
	defer c.Close()

	sc, err := ssaead.NewConn(c, profile, key, pool)
	if err != nil {
		log.Logf("failed to shadow %s: %v", c.RemoteAddr(), err)
		return
	}
	defer sc.Close()

	addr, err := readTarget(sc)
	if err != nil {
		log.Logf("failed to read target address: %v", err)
		return
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		log.Logf("failed to connect to target: %s", err)
		return
	}
	defer conn.Close()

	log.Logf("proxy %s <-> %s", c.RemoteAddr(), addr)
	_, _, err = relay(sc, conn)
	if err != nil {
		if err, ok := err.(net.Error); ok && err.Timeout() {
			return // ignore i/o timeout
		}
		log.Logf("relay error: %v", err)
	}
}

// relay copies between left and right bidirectionally. Returns number of
// bytes copied from right to left, from left to right, and any error occurred.
func relay(left, right net.Conn) (int64, int64, error) {
	type res struct {
		N   int64
		Err error
	}
	ch := make(chan res)

	go func() {
		n, err := io.Copy(right, left)
		right.SetDeadline(time.Now()) // wake up the other goroutine blocking on right
		left.SetDeadline(time.Now())  // wake up the other goroutine blocking on left
		ch <- res{n, err}
	}()

	n, err := io.Copy(left, right)
	right.SetDeadline(time.Now()) // wake up the other goroutine blocking on right
	left.SetDeadline(time.Now())  // wake up the other goroutine blocking on left
	rs := <-ch

	if err == nil {
		err = rs.Err
	}
	return n, rs.N, err
}
