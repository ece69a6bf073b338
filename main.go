package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/shadowpipe/go-shadowpipe/core"
	"github.com/shadowpipe/go-shadowpipe/ssaead"
)

func main() {

	var flags struct {
		Client  SpaceSeparatedList
		Server  string
		Key     string
		TCPTun  PairList
		Verbose bool
		Keygen  int
	}

	flag.BoolVar(&flags.Verbose, "verbose", false, "verbose mode")
	flag.Var(&flags.Client, "c", "client mode: server url(s) ss://cipher:password@host:port")
	flag.StringVar(&flags.Server, "s", "", "server mode: listen url ss://cipher:password@host:port")
	flag.StringVar(&flags.Key, "key", "", "base64url-encoded key (derive from password if empty)")
	flag.Var(&flags.TCPTun, "tcptun", "(client-only) TCP tunnel (laddr1=target1,laddr2=target2,...)")
	flag.IntVar(&flags.Keygen, "keygen", 0, "generate a base64url-encoded random key of given length in byte")
	flag.Parse()

	initLogger(flags.Verbose)

	if flags.Keygen > 0 {
		key := make([]byte, flags.Keygen)
		io.ReadFull(rand.Reader, key)
		fmt.Println(base64.URLEncoding.EncodeToString(key))
		return
	}

	if len(flags.Client) == 0 && flags.Server == "" {
		flag.Usage()
		fmt.Fprintf(os.Stderr, "\navailable ciphers: %s\n", strings.Join(core.ListCipher(), " "))
		return
	}

	var key []byte
	if flags.Key != "" {
		k, err := base64.URLEncoding.DecodeString(flags.Key)
		if err != nil {
			stdlog.Fatal(err)
		}
		key = k
	}

	if len(flags.Client) > 0 { // client mode
		if len(flags.TCPTun) == 0 {
			stdlog.Fatal("client mode needs -tcptun")
		}

		d, err := NewPriorityDialer(key, flags.Client...)
		if err != nil {
			stdlog.Fatal(err)
		}

		for _, tun := range flags.TCPTun {
			go tcpTun(tun[0], tun[1], d)
		}
	}

	if flags.Server != "" { // server mode
		addr, cipher, password, err := parseURL(flags.Server)
		if err != nil {
			stdlog.Fatal(err)
		}

		profile, err := core.PickProfile(cipher)
		if err != nil {
			stdlog.Fatal(err)
		}
		if len(key) == 0 {
			key = core.Key(password, profile.KeySize)
		}

		go tcpRemote(addr, profile, key, ssaead.DefaultSaltPool())
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
}
