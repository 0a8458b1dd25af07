package coding

import (
	"fmt"
	"testing"

	"github.com/seiflotfy/huffpack/internal/prng"
)

func BenchmarkCountFrequencies(b *testing.B) {
	data := prng.New(1).Bytes(1<<20, 256)
	b.SetBytes(int64(len(data)))
	b.Run("serial", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			CountFrequencies(data)
		}
	})
	for _, w := range []int{2, 4, 8} {
		b.Run(fmt.Sprintf("workers=%d", w), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				CountFrequenciesParallel(data, w)
			}
		})
	}
}

func BenchmarkPack(b *testing.B) {
	data := prng.New(2).Bytes(1<<20, 64)
	tree, err := BuildTree(CountFrequencies(data))
	if err != nil {
		b.Fatal(err)
	}
	cb, err := AssignCodes(tree)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(data)))
	b.Run("serial", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := Pack(data, &cb); err != nil {
				b.Fatal(err)
			}
		}
	})
	for _, w := range []int{2, 4, 8} {
		b.Run(fmt.Sprintf("workers=%d", w), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := PackParallel(data, &cb, w); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkUnpack(b *testing.B) {
	data := prng.New(3).Bytes(1<<18, 64)
	tree, err := BuildTree(CountFrequencies(data))
	if err != nil {
		b.Fatal(err)
	}
	cb, err := AssignCodes(tree)
	if err != nil {
		b.Fatal(err)
	}
	p, err := Pack(data, &cb)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(data)))
	b.Run("tree", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := Unpack(p, tree); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("codebook", func(b *testing.B) {
		m, err := NewMatcher(&cb)
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			if _, err := UnpackMatcher(p, m); err != nil {
				b.Fatal(err)
			}
		}
	})
}
