package util

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/exp/constraints"
)

func EnsureOutputDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create output dir %v: %w", dir, err)
	}
	return nil
}

// OutputPath places base+ext inside dir, keeping base's own directory when dir
// is empty.
func OutputPath(dir, base, ext string) string {
	if dir == "" {
		return base + ext
	}
	return filepath.Join(dir, filepath.Base(base)+ext)
}

// WriteFile writes data next to path first and renames it into place so a
// failed write never leaves a truncated output behind.
func WriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write failed for file %v: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write failed for file %v: %w", path, err)
	}
	return nil
}

func TrimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

func GetKeysSorted[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

func Min[A constraints.Integer](num1 A, num2 A) A {
	if num1 > num2 {
		return num2
	}
	return num1
}

func Max[A constraints.Integer](num1 A, num2 A) A {
	if num1 < num2 {
		return num2
	}
	return num1
}

func Sum[A constraints.Integer](nums []A) int64 {
	var total int64
	for _, v := range nums {
		total += int64(v)
	}
	return total
}

// GCD returns the greatest common divisor of a and b, with GCD(0, b) == |b|.
func GCD[A constraints.Integer](a, b A) A {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func LCM[A constraints.Integer](a, b A) A {
	if a == 0 || b == 0 {
		return 0
	}
	return a / GCD(a, b) * b
}

func CeilDiv[A constraints.Integer](a, b A) A {
	return (a + b - 1) / b
}
