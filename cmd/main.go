package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/drpcorg/datatypes"
	"github.com/drpcorg/datatypes/store"
	"github.com/drpcorg/datatypes/utils"
	"github.com/ergochat/readline"
)

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),
	readline.PcItem("fetch",
		readline.PcItem("counter"),
		readline.PcItem("set"),
		readline.PcItem("map"),
	),
	readline.PcItem("show"),
	readline.PcItem("dirty"),
	readline.PcItem("incr"),
	readline.PcItem("decr"),
	readline.PcItem("sadd"),
	readline.PcItem("srem"),
	readline.PcItem("massign"),
	readline.PcItem("mdel"),
	readline.PcItem("submit"),
	readline.PcItem("exit"),
	readline.PcItem("quit"),
)

const usage = `commands:
  fetch <counter|set|map> <id>   fetch an object (or start an empty one)
  show <id>                      print the base value
  dirty <id>                     print the value with queued mutations
  incr <id> [n]                  queue a counter increment
  decr <id> [n]                  queue a counter decrement
  sadd <id> <elem>               queue a set addition
  srem <id> <elem>               queue a set removal
  massign <id> <name> <value>    queue a register write inside a map
  mdel <id> <name> <tag>         queue a key removal inside a map
  submit <id>                    send the queued operation to the store
  exit`

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

type session struct {
	client    *store.Client
	instances map[string]datatypes.Datatype
}

func (s *session) instance(id string) (datatypes.Datatype, error) {
	d, ok := s.instances[id]
	if !ok {
		return nil, fmt.Errorf("no fetched object %q, use fetch first", id)
	}
	return d, nil
}

func (s *session) run(ctx context.Context, args []string) error {
	switch args[0] {
	case "help":
		fmt.Println(usage)
	case "fetch":
		if len(args) != 3 {
			return fmt.Errorf("usage: fetch <counter|set|map> <id>")
		}
		d, err := s.client.Fetch(ctx, datatypes.Tag(args[1]), args[2])
		if err != nil {
			return err
		}
		s.instances[args[2]] = d
		fmt.Println(d.String())
	case "show", "dirty":
		if len(args) != 2 {
			return fmt.Errorf("usage: %s <id>", args[0])
		}
		d, err := s.instance(args[1])
		if err != nil {
			return err
		}
		if args[0] == "show" {
			fmt.Printf("%v\n", d.Native())
		} else {
			fmt.Printf("%v\n", d.DirtyNative())
		}
	case "incr", "decr":
		if len(args) < 2 {
			return fmt.Errorf("usage: %s <id> [n]", args[0])
		}
		d, err := s.instance(args[1])
		if err != nil {
			return err
		}
		c, ok := d.(*datatypes.Counter)
		if !ok {
			return fmt.Errorf("%q is not a counter", args[1])
		}
		n := int64(1)
		if len(args) > 2 {
			if n, err = strconv.ParseInt(args[2], 10, 64); err != nil {
				return err
			}
		}
		if args[0] == "incr" {
			c.Increment(n)
		} else {
			c.Decrement(n)
		}
		fmt.Println(c.String())
	case "sadd", "srem":
		if len(args) != 3 {
			return fmt.Errorf("usage: %s <id> <elem>", args[0])
		}
		d, err := s.instance(args[1])
		if err != nil {
			return err
		}
		set, ok := d.(*datatypes.Set)
		if !ok {
			return fmt.Errorf("%q is not a set", args[1])
		}
		if args[0] == "sadd" {
			set.Add(args[2])
		} else {
			set.Discard(args[2])
		}
		fmt.Println(set.String())
	case "massign":
		if len(args) != 4 {
			return fmt.Errorf("usage: massign <id> <name> <value>")
		}
		d, err := s.instance(args[1])
		if err != nil {
			return err
		}
		m, ok := d.(*datatypes.Map)
		if !ok {
			return fmt.Errorf("%q is not a map", args[1])
		}
		reg, err := m.Registers().Get(args[2])
		if err != nil {
			return err
		}
		reg.Assign(args[3])
		fmt.Println(m.String())
	case "mdel":
		if len(args) != 4 {
			return fmt.Errorf("usage: mdel <id> <name> <tag>")
		}
		d, err := s.instance(args[1])
		if err != nil {
			return err
		}
		m, ok := d.(*datatypes.Map)
		if !ok {
			return fmt.Errorf("%q is not a map", args[1])
		}
		return m.Delete(datatypes.Key{Name: args[2], Tag: datatypes.Tag(args[3])})
	case "submit":
		if len(args) != 2 {
			return fmt.Errorf("usage: submit <id>")
		}
		d, err := s.instance(args[1])
		if err != nil {
			return err
		}
		if err = s.client.Update(ctx, args[1], d); err != nil {
			return err
		}
		// the submitted instance is stale now, refetch to observe the merge
		fresh, err := s.client.Fetch(ctx, d.Tag(), args[1])
		if err != nil {
			return err
		}
		s.instances[args[1]] = fresh
		fmt.Println(fresh.String())
	default:
		return fmt.Errorf("unknown command %q, try help", args[0])
	}
	return nil
}

func main() {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "◌ ",
		HistoryFile:     "/tmp/datatypes-repl.tmp",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	log := utils.NewDefaultLogger(slog.LevelWarn)
	var local *store.Local
	if len(os.Args) > 1 {
		local, err = store.Open(os.Args[1], log)
	} else {
		local, err = store.OpenMemory(log)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(-1)
	}
	defer local.Close()

	client, err := store.NewClient(local, store.Options{Log: log})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(-1)
	}
	sess := &session{client: client, instances: make(map[string]datatypes.Datatype)}
	ctx := context.Background()

	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			break
		}

		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		args := strings.Split(line, " ")
		if args[0] == "exit" || args[0] == "quit" {
			break
		}
		if err = sess.run(ctx, args); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
		}
	}
}
