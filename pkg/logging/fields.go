package logging

import "time"

// Field represents a key-value pair for structured logging
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Analysis field helpers

func Component(name string) Field {
	return String("component", name)
}

// Tree names the input a tree was loaded from
func Tree(name string) Field {
	return String("tree", name)
}

// Phase names a stage of the defense-semantics derivation
func Phase(name string) Field {
	return String("phase", name)
}

func Actor(name string) Field {
	return String("actor", name)
}

func Label(label string) Field {
	return String("label", label)
}

func Domain(name string) Field {
	return String("domain", name)
}

func Count(n int) Field {
	return Int("count", n)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func RunID(id string) Field {
	return String("run_id", id)
}
