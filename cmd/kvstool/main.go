// Command kvstool inspects and mutates a kvs store from the command line.
//
// Examples:
//
//	kvstool -i 1 -o listkeys
//	kvstool -i 1 -o setkey -k MyKey -p '123'
//	kvstool -i 1 -o setkey -k MyKey -p '[456,false,"Second"]'
//	kvstool -i 1 -o getkey -k MyKey
//	kvstool -i 1 -o snapshotrestore -s 1
//	kvstool -i 1 -b store.bolt -o listkeys
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/andreyvit/kvs"
	"github.com/andreyvit/kvs/kvjson"
	"github.com/andreyvit/kvs/kvsbolt"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "kvstool: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	instance := flag.String("i", "", "Instance ID")
	dir := flag.String("d", kvs.DefaultDir, "Storage directory")
	boltPath := flag.String("b", "", "Store everything in a single bbolt file instead of a directory")
	op := flag.String("o", "", "Operation: getkey, setkey, removekey, listkeys, reset, snapshotcount, snapshotmaxcount, snapshotrestore, getkvsfilename, gethashfilename")
	key := flag.String("k", "", "Key to operate on")
	payload := flag.String("p", "", "Payload for setkey (JSON, or a plain string if not valid JSON)")
	snapshot := flag.Int("s", 0, "Snapshot ID for snapshotrestore/getkvsfilename/gethashfilename")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()
	if len(flag.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", flag.Args())
	}
	if *instance == "" {
		return errors.New("instance ID (-i) needs to be specified")
	}
	if *op == "" {
		return errors.New("operation (-o) needs to be specified")
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:   level,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	builder := kvs.NewBuilder(*instance).Directory(*dir).WithLogger(logger).FlushOnExit(false)
	if *boltPath != "" {
		bfs, err := kvsbolt.Open(*boltPath)
		if err != nil {
			return err
		}
		defer bfs.Close()
		builder = builder.Directory("").WithFilesystem(bfs)
	}
	store, err := builder.Build()
	if err != nil {
		return err
	}

	switch *op {
	case "getkey":
		return getKey(store, *key)
	case "setkey":
		return setKey(store, *key, *payload)
	case "removekey":
		return removeKey(store, *key)
	case "listkeys":
		return listKeys(store)
	case "reset":
		if err := store.Reset(); err != nil {
			return err
		}
		return store.Flush()
	case "snapshotcount":
		count, err := store.SnapshotCount()
		if err != nil {
			return err
		}
		fmt.Println(count)
		return nil
	case "snapshotmaxcount":
		fmt.Println(store.SnapshotMaxCount())
		return nil
	case "snapshotrestore":
		if err := store.SnapshotRestore(*snapshot); err != nil {
			return err
		}
		return store.Flush()
	case "getkvsfilename":
		return printFilename(store.KvsFilename(*snapshot))
	case "gethashfilename":
		return printFilename(store.HashFilename(*snapshot))
	default:
		return fmt.Errorf("unknown operation %q", *op)
	}
}

func getKey(store *kvs.Store, key string) error {
	if key == "" {
		return errors.New("key (-k) needs to be specified")
	}
	exists, err := store.KeyExists(key)
	if err != nil {
		return err
	}
	if exists {
		value, err := store.GetValue(key)
		if err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", key, formatValue(value))
	} else {
		fmt.Printf("%s is not written\n", key)
	}
	if isDefault, err := store.IsValueDefault(key); err == nil && isDefault {
		fmt.Printf("%s resolves to its default\n", key)
	}
	if value, err := store.GetDefaultValue(key); err == nil {
		fmt.Printf("default: %s\n", formatValue(value))
	}
	return nil
}

func setKey(store *kvs.Store, key, payload string) error {
	if key == "" {
		return errors.New("key (-k) needs to be specified")
	}
	value := parsePayload(payload)
	if err := store.SetValue(key, value); err != nil {
		return err
	}
	return store.Flush()
}

func removeKey(store *kvs.Store, key string) error {
	if key == "" {
		return errors.New("key (-k) needs to be specified")
	}
	if err := store.RemoveKey(key); err != nil {
		return err
	}
	return store.Flush()
}

func listKeys(store *kvs.Store) error {
	keys, err := store.GetAllKeys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		fmt.Println(key)
	}
	return nil
}

func printFilename(path string, err error) error {
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

// parsePayload interprets the -p argument as a JSON document, falling back
// to a plain string. JSON numbers become f64 values, matching what an
// untagged literal can promise.
func parsePayload(payload string) kvs.Value {
	doc, err := kvjson.Parse([]byte(payload))
	if err != nil {
		return kvs.String(payload)
	}
	return valueFromDoc(doc)
}

func valueFromDoc(doc kvjson.Doc) kvs.Value {
	if obj, ok := doc.Object(); ok {
		entries := make(map[string]kvs.Value, len(obj))
		for k, d := range obj {
			entries[k] = valueFromDoc(d)
		}
		return kvs.Object(entries)
	}
	if arr, ok := doc.Array(); ok {
		elems := make([]kvs.Value, len(arr))
		for i, d := range arr {
			elems[i] = valueFromDoc(d)
		}
		return kvs.Array(elems)
	}
	if s, ok := doc.Str(); ok {
		return kvs.String(s)
	}
	if b, ok := doc.Bool(); ok {
		return kvs.Bool(b)
	}
	if f, ok := doc.AsF64(); ok {
		return kvs.F64(f)
	}
	return kvs.Null()
}

func formatValue(value kvs.Value) string {
	doc, err := encodeForDisplay(value)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return doc
}

func encodeForDisplay(value kvs.Value) (string, error) {
	doc, err := kvs.EncodeValue(value)
	if err != nil {
		return "", err
	}
	data, err := kvjson.Serialize(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
