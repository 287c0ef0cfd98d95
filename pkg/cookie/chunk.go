package cookie

import (
	"strconv"
	"strings"
)

// MaxChunkSize keeps each cookie, attributes included, under the 4096 byte
// limit browsers enforce.
const MaxChunkSize = 3180

// Chunk splits value into cookies named key, or key.0, key.1, ... when it
// does not fit into size bytes. Options are left zero for the caller to fill.
func Chunk(key, value string, size int) []Cookie {
	if size <= 0 {
		size = MaxChunkSize
	}
	if len(value) <= size {
		return []Cookie{{Name: key, Value: value}}
	}

	chunks := make([]Cookie, 0, len(value)/size+1)
	for i := 0; len(value) > 0; i++ {
		n := min(size, len(value))
		chunks = append(chunks, Cookie{Name: chunkName(key, i), Value: value[:n]})
		value = value[n:]
	}
	return chunks
}

// Combine reassembles the value stored under key. A cookie named exactly key
// wins over chunks; otherwise chunks are concatenated from .0 until the first gap.
func Combine(key string, cookies []Cookie) (string, bool) {
	if c, ok := Find(cookies, key); ok {
		return c.Value, true
	}

	var sb strings.Builder
	found := false
	for i := 0; ; i++ {
		c, ok := Find(cookies, chunkName(key, i))
		if !ok {
			break
		}
		sb.WriteString(c.Value)
		found = true
	}
	return sb.String(), found
}

// ChunkNames returns the names in cookies that belong to key: key itself and
// any key.N chunk.
func ChunkNames(key string, cookies []Cookie) []string {
	var names []string
	for _, c := range cookies {
		if IsChunkOf(key, c.Name) {
			names = append(names, c.Name)
		}
	}
	return names
}

// IsChunkOf reports whether name is key or one of its numbered chunks.
func IsChunkOf(key, name string) bool {
	if name == key {
		return true
	}
	suffix, ok := strings.CutPrefix(name, key+".")
	if !ok || suffix == "" {
		return false
	}
	_, err := strconv.Atoi(suffix)
	return err == nil
}

func chunkName(key string, i int) string {
	return key + "." + strconv.Itoa(i)
}
