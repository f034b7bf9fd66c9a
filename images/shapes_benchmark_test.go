package images

import (
	"math/rand"
	"testing"
)

func BenchmarkCalculateIoU_SeedAgainstForegroundBounds(b *testing.B) {
	seed := RectFromXYWH(50, 50, 450, 290)
	bounds := RectFromXYWH(180, 100, 190, 190)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		CalculateIoU(seed, bounds)
	}
}

func BenchmarkCalculateIoU_RandomPairs(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	pairs := make([][2]Rect, 1024)
	for i := range pairs {
		for j := range pairs[i] {
			x, y := rng.Intn(1500), rng.Intn(800)
			pairs[i][j] = RectFromXYWH(x, y, 1+rng.Intn(400), 1+rng.Intn(300))
		}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := pairs[i%len(pairs)]
		CalculateIoU(p[0], p[1])
	}
}

func BenchmarkRectValidateWithin(b *testing.B) {
	seed := RectFromXYWH(50, 50, 450, 290)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = seed.ValidateWithin(500, 350)
	}
}
