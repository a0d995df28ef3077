package log

import (
	"gopkg.in/Sirupsen/logrus.v0"
)

// Context adds fields to every log entry. The emulator registers one so that
// all entries carry the current program counter.
type Context interface {
	AddLogContext(z *EntryZ)
}

var contexts []Context

// AddContext registers c; its fields are added to all subsequent entries.
func AddContext(c Context) {
	contexts = append(contexts, c)
}

// RemoveContext unregisters c.
func RemoveContext(c Context) {
	for i := range contexts {
		if contexts[i] == c {
			contexts = append(contexts[:i], contexts[i+1:]...)
			return
		}
	}
}

// Entry is a printf-style log entry of a module. Messages of disabled
// modules or levels are dropped before formatting.
type Entry struct {
	mod Module
}

func (entry Entry) log() *logrus.Entry {
	final := logrus.StandardLogger().WithField("_mod", entry.mod.String())

	var z EntryZ
	for _, c := range contexts {
		c.AddLogContext(&z)
	}
	if z.zfidx == 0 {
		return final
	}
	fields := make(logrus.Fields, z.zfidx)
	for i := range z.zfbuf[:z.zfidx] {
		fields[z.zfbuf[i].Key] = z.zfbuf[i].Value()
	}
	return final.WithFields(fields)
}

func (entry Entry) Warnf(format string, args ...any) {
	if entry.mod.Enabled(WarnLevel) {
		entry.log().Warnf(format, args...)
	}
}

func (entry Entry) Errorf(format string, args ...any) {
	if entry.mod.Enabled(ErrorLevel) {
		entry.log().Errorf(format, args...)
	}
}

func (entry Entry) Fatalf(format string, args ...any) {
	if entry.mod.Enabled(FatalLevel) {
		entry.log().Fatalf(format, args...)
	}
}
