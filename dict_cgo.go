//go:build cgo

package ffbridge

/*
#include <stdlib.h>
#include "ffbridge.h"
*/
import "C"

import (
	"strings"
	"unsafe"

	"github.com/pkg/errors"
)

// Dictionary is an AVDictionary of string options.
type Dictionary struct {
	dict *C.AVDictionary
}

// NewDictionary returns an empty dictionary. The native dictionary is
// allocated on the first Set.
func NewDictionary() *Dictionary {
	return &Dictionary{}
}

// NewDictionaryFrom builds a dictionary from m.
func NewDictionaryFrom(m map[string]string) (*Dictionary, error) {
	d := NewDictionary()
	for k, v := range m {
		if err := d.Set(k, v); err != nil {
			d.Close()
			return nil, err
		}
	}
	return d, nil
}

// Set stores value under key, replacing an existing entry.
func (d *Dictionary) Set(key, value string) error {
	ckey := C.CString(key)
	defer C.free(unsafe.Pointer(ckey))
	cval := C.CString(value)
	defer C.free(unsafe.Pointer(cval))
	if err := errorFromC(C.av_dict_set(&d.dict, ckey, cval, 0)); err != nil {
		return errors.Wrapf(err, "set %q", key)
	}
	return nil
}

// Get looks key up case-insensitively.
func (d *Dictionary) Get(key string) (string, bool) {
	return d.GetFlags(key, 0)
}

// GetFlags looks key up with DictMatchCase / DictIgnoreSuffix flags.
func (d *Dictionary) GetFlags(key string, flags int) (string, bool) {
	if d == nil || d.dict == nil {
		return "", false
	}
	ckey := C.CString(key)
	defer C.free(unsafe.Pointer(ckey))
	e := C.av_dict_get(d.dict, ckey, nil, C.int(flags))
	if e == nil {
		return "", false
	}
	return C.GoString(e.value), true
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	if d == nil || d.dict == nil {
		return 0
	}
	return int(C.av_dict_count(d.dict))
}

// Each calls fn for every entry in insertion order.
func (d *Dictionary) Each(fn func(key, value string)) {
	if d == nil || d.dict == nil {
		return
	}
	empty := C.CString("")
	defer C.free(unsafe.Pointer(empty))
	var e *C.AVDictionaryEntry
	for {
		e = C.av_dict_get(d.dict, empty, e, C.AV_DICT_IGNORE_SUFFIX)
		if e == nil {
			return
		}
		fn(C.GoString(e.key), C.GoString(e.value))
	}
}

// String renders the entries as "k=v, k=v".
func (d *Dictionary) String() string {
	var b strings.Builder
	d.Each(func(k, v string) {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(v)
	})
	return b.String()
}

// Close frees the native dictionary.
func (d *Dictionary) Close() error {
	if d != nil && d.dict != nil {
		C.av_dict_free(&d.dict)
	}
	return nil
}

// ref returns the pointer native option-taking calls want. The callee may
// replace the dictionary with the options it did not consume.
func (d *Dictionary) ref() **C.AVDictionary {
	if d == nil {
		return nil
	}
	return &d.dict
}
