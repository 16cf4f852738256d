package runtime

import (
	"bufio"
	"maps"
	"os"
	"os/user"
	goruntime "runtime"
	"strings"
	"sync"
)

// Target names an operating system and instruction set architecture.
type Target struct {
	OS   string
	Arch string
}

// Map returns t with the lower-case keys templates use.
func (t Target) Map() map[string]any {
	return map[string]any{"os": t.OS, "arch": t.Arch}
}

//nolint:gochecknoglobals
var (
	systemOnce    sync.Once
	systemGlobals map[string]any
)

// SystemGlobals returns a description of the host, computed once per
// process. The returned map may be modified freely.
//
//	platform  {os, arch}  GOOS/GOARCH naming
//	target    {os, arch}  GNU triplet naming (x86_64, aarch64, ...)
//	hostname  string
//	user      {name, username, uid, gid, home}
//	shell     string
//	cwd       string
//	env       map[string]string  process environment
func SystemGlobals() map[string]any {
	systemOnce.Do(func() {
		systemGlobals = map[string]any{
			"platform": platform().Map(),
			"target":   target().Map(),
			"hostname": hostname(),
			"user":     currentUser(),
			"shell":    shell(),
		}
	})

	g := maps.Clone(systemGlobals)
	g["cwd"] = cwd()
	g["env"] = environ(os.Environ())

	return g
}

// target returns the host using GNU GCC/LLVM naming conventions.
func target() Target {
	t := platform()

	switch t.Arch {
	case "386":
		t.Arch = "i386"
	case "amd64":
		t.Arch = "x86_64"
	case "arm":
		if arm, ok := os.LookupEnv("GOARM"); ok {
			arm, _, _ = strings.Cut(arm, ",")
			switch strings.TrimSpace(arm) {
			case "5", "6", "7":
				t.Arch = "armv" + arm
			}
		}
	case "arm64":
		if t.OS != "darwin" {
			t.Arch = "aarch64"
		}
	case "mipsle":
		t.Arch = "mipsel"
	}

	return t
}

// platform returns the host using Go conventions, honoring GOHOSTOS and
// GOOS (and their ARCH counterparts) when set.
func platform() Target {
	lookup := func(def string, keys ...string) string {
		for _, k := range keys {
			if v, ok := os.LookupEnv(k); ok {
				return v
			}
		}

		return def
	}

	return Target{
		OS:   lookup(goruntime.GOOS, "GOHOSTOS", "GOOS"),
		Arch: lookup(goruntime.GOARCH, "GOHOSTARCH", "GOARCH"),
	}
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}

	return h
}

func currentUser() map[string]any {
	u, err := user.Current()
	if err != nil {
		return map[string]any{}
	}

	return map[string]any{
		"name":     u.Name,
		"username": u.Username,
		"uid":      u.Uid,
		"gid":      u.Gid,
		"home":     u.HomeDir,
	}
}

// shell returns $SHELL, falling back to the login shell in /etc/passwd.
func shell() string {
	if s, ok := os.LookupEnv("SHELL"); ok {
		return s
	}

	u, err := user.Current()
	if err != nil || u.Username == "" {
		return ""
	}

	f, err := os.Open("/etc/passwd")
	if err != nil {
		return ""
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		e := strings.Split(s.Text(), ":")
		if len(e) > 6 && e[0] == u.Username {
			return e[6]
		}
	}

	return ""
}

func cwd() string {
	d, err := os.Getwd()
	if err != nil {
		return "."
	}

	return d
}

// environ converts "KEY=VALUE" entries to a map.
func environ(entries []string) map[string]string {
	m := make(map[string]string, len(entries))

	for _, e := range entries {
		if k, v, ok := strings.Cut(e, "="); ok {
			m[k] = v
		}
	}

	return m
}
