package vision

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"

	"subsea-inspector/internal/domain/entity"
)

func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 10, G: 60, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestMockDetector_Detect(t *testing.T) {
	d := NewMockDetector(DefaultConfidenceThreshold)
	defects, err := d.Detect(context.Background(), samplePNG(t, 640, 480))
	require.NoError(t, err)
	require.Len(t, defects, 3)

	require.Equal(t, entity.DefectCorrosion, defects[0].Type)
	require.Equal(t, entity.SeverityMedium, defects[0].Severity)
	require.Equal(t, 0.96, defects[0].Confidence)
	require.Equal(t, entity.DefectArea{X: 192, Y: 192, Width: 120, Height: 85}, defects[0].Box)
	require.Equal(t, 12.5, *defects[0].Dimensions.Length)
	require.Equal(t, entity.DefectCoatingDamage, defects[2].Type)

	for _, def := range defects {
		require.Regexp(t, `^defect_[0-9a-f]{8}$`, def.ID)
		require.NoError(t, def.Validate())
	}
}

func TestMockDetector_Threshold(t *testing.T) {
	d := NewMockDetector(0.9)
	defects, err := d.Detect(context.Background(), samplePNG(t, 100, 100))
	require.NoError(t, err)
	require.Len(t, defects, 2)

	d = NewMockDetector(0.99)
	defects, err = d.Detect(context.Background(), samplePNG(t, 100, 100))
	require.NoError(t, err)
	require.Empty(t, defects)
}

func TestMockDetector_RejectsGarbage(t *testing.T) {
	_, err := NewMockDetector(DefaultConfidenceThreshold).Detect(context.Background(), []byte("not an image"))
	require.Error(t, err)
	require.True(t, entity.IsValidation(err))
}

// inflatedPNG возвращает крошечный PNG, в заголовке IHDR которого объявлен кадр w x h.
func inflatedPNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := samplePNG(t, 1, 1)
	// сигнатура 8 байт, затем длина и тип чанка IHDR; ширина и высота с 16-го байта
	require.Equal(t, "IHDR", string(data[12:16]))
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestMockDetector_RejectsOversizedHeader(t *testing.T) {
	data := inflatedPNG(t, 20000, 20000)
	require.Less(t, len(data), 128)

	d := NewMockDetector(DefaultConfidenceThreshold)
	_, err := d.Detect(context.Background(), data)
	require.True(t, entity.IsValidation(err))
	require.Contains(t, err.Error(), "too large")

	_, err = d.HighlightDefects(data, []entity.Defect{{Box: entity.DefectArea{Width: 10, Height: 10}}})
	require.True(t, entity.IsValidation(err))
}

func TestImageConfig_AcceptsLimit(t *testing.T) {
	_, err := imageConfig(inflatedPNG(t, 8000, 5000))
	require.NoError(t, err)

	_, err = imageConfig(inflatedPNG(t, 8000, 5001))
	require.True(t, entity.IsValidation(err))
}

func TestMockDetector_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMockDetector(DefaultConfidenceThreshold).Detect(ctx, samplePNG(t, 10, 10))
	require.ErrorIs(t, err, context.Canceled)
}

func TestMockDetector_HighlightDefects(t *testing.T) {
	data := samplePNG(t, 200, 150)
	d := NewMockDetector(DefaultConfidenceThreshold)

	out, err := d.HighlightDefects(data, []entity.Defect{
		{Box: entity.DefectArea{X: 10, Y: 10, Width: 50, Height: 40}},
		{Box: entity.DefectArea{X: 180, Y: 140, Width: 100, Height: 100}},
	})
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 200, img.Bounds().Dx())

	_, g, b, _ := img.At(11, 11).RGBA()
	require.Greater(t, g, b, "frame pixel should be green")
	_, g, b, _ = img.At(100, 100).RGBA()
	require.Greater(t, b, g, "background should stay untouched")

	_, err = d.HighlightDefects([]byte("junk"), nil)
	require.Error(t, err)
}

func TestNew(t *testing.T) {
	det, err := New(KindMock, 0.5)
	require.NoError(t, err)
	require.IsType(t, &MockDetector{}, det)

	_, err = New("yolo", 0.5)
	require.Error(t, err)

	_, err = New(KindGoCV, 0.5)
	if Available() {
		require.NoError(t, err)
	} else {
		require.ErrorIs(t, err, ErrGoCVDisabled)
	}
}
