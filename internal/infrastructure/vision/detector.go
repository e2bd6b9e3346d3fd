//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"gocv.io/x/gocv"

	"subsea-inspector/internal/domain/entity"
	"subsea-inspector/internal/domain/port"
)

// GoCVDetector контурный детектор на OpenCV.
// Контуры не классифицируются, поэтому тип всегда other, а серьёзность задаётся долей площади.
type GoCVDetector struct {
	MinAreaRatio          float64
	MaxAspectRatio        float64
	MinAspectRatio        float64
	MaxSide               int
	MinImageSide          int
	MinSharpnessEdgeRatio float64
	MaxOverexposedRatio   float64
	MaxUnderexposedRatio  float64
	MaxGlareRatio         float64
	HighAreaRatio         float64 // доля площади кадра, начиная с которой дефект high
	MediumAreaRatio       float64 // доля площади кадра, начиная с которой дефект medium
	Confidence            float64 // уверенность, приписываемая каждому контуру
}

// NewGoCVDetector создаёт детектор с порогами по умолчанию.
func NewGoCVDetector(confidence float64) *GoCVDetector {
	return &GoCVDetector{
		MinAreaRatio:          0.001,
		MinAspectRatio:        0.1,
		MaxAspectRatio:        10.0,
		MaxSide:               1024,
		MinImageSide:          400,
		MinSharpnessEdgeRatio: 0.008,
		MaxOverexposedRatio:   0.35,
		MaxUnderexposedRatio:  0.45,
		MaxGlareRatio:         0.08,
		HighAreaRatio:         0.05,
		MediumAreaRatio:       0.01,
		Confidence:            confidence,
	}
}

// Detect запускает анализ изображения и возвращает найденные дефекты в координатах исходного кадра.
func (d *GoCVDetector) Detect(ctx context.Context, imageData []byte) ([]entity.Defect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	if err := d.checkImageQuality(mat); err != nil {
		return nil, err
	}

	// Приводим изображение к стандартному размеру для стабильных порогов.
	scale := 1.0
	if mat.Cols() > d.MaxSide || mat.Rows() > d.MaxSide {
		scale = float64(d.MaxSide) / float64(max(mat.Cols(), mat.Rows()))
		resized := gocv.NewMat()
		gocv.Resize(mat, &resized, image.Pt(int(float64(mat.Cols())*scale), int(float64(mat.Rows())*scale)), 0, 0, gocv.InterpolationArea)
		mat.Close()
		mat = resized
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	blur := gocv.NewMat()
	defer blur.Close()
	gocv.GaussianBlur(gray, &blur, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blur, &edges, 50, 150)

	contours := gocv.FindContours(edges, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	frameArea := float64(mat.Cols() * mat.Rows())
	minArea := int(frameArea * d.MinAreaRatio)
	defects := make([]entity.Defect, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		rect := gocv.BoundingRect(contours.At(i))
		area := rect.Dx() * rect.Dy()
		if area < minArea || rect.Dy() == 0 {
			continue
		}
		aspect := float64(rect.Dx()) / float64(rect.Dy())
		if aspect < d.MinAspectRatio || aspect > d.MaxAspectRatio {
			continue
		}

		defects = append(defects, entity.Defect{
			ID:         fmt.Sprintf("contour_%d", len(defects)+1),
			Type:       entity.DefectOther,
			Severity:   d.severity(float64(area) / frameArea),
			Confidence: d.Confidence,
			Box: entity.DefectArea{
				X:      int(float64(rect.Min.X) / scale),
				Y:      int(float64(rect.Min.Y) / scale),
				Width:  int(float64(rect.Dx()) / scale),
				Height: int(float64(rect.Dy()) / scale),
			},
			Description: "Contour anomaly",
		})
	}
	return defects, nil
}

func (d *GoCVDetector) severity(areaRatio float64) entity.Severity {
	switch {
	case areaRatio >= d.HighAreaRatio:
		return entity.SeverityHigh
	case areaRatio >= d.MediumAreaRatio:
		return entity.SeverityMedium
	default:
		return entity.SeverityLow
	}
}

// HighlightDefects рисует прямоугольники вокруг дефектов и возвращает новую картинку.
func (d *GoCVDetector) HighlightDefects(imageData []byte, defects []entity.Defect) ([]byte, error) {
	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	green := color.RGBA{G: 255, A: 255}
	for _, defect := range defects {
		b := defect.Box
		gocv.Rectangle(&mat, image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height), green, 2)
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	if _, err := imageConfig(imageData); err != nil {
		return gocv.NewMat(), err
	}
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), entity.NewValidationError("image", "cannot decode")
}

// checkImageQuality отбраковывает мелкие, размытые, пере- и недоэкспонированные кадры и блики.
func (d *GoCVDetector) checkImageQuality(mat gocv.Mat) error {
	if mat.Cols() < d.MinImageSide || mat.Rows() < d.MinImageSide {
		return entity.NewValidationError("image", fmt.Sprintf("too small (%dx%d)", mat.Cols(), mat.Rows()))
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 80, 160)
	if ratio := ratioOfMask(edges); ratio < d.MinSharpnessEdgeRatio {
		return entity.NewValidationError("image", fmt.Sprintf("blurry (edge_ratio=%.4f)", ratio))
	}

	bright := gocv.NewMat()
	defer bright.Close()
	gocv.Threshold(gray, &bright, 250, 255, gocv.ThresholdBinary)
	if ratio := ratioOfMask(bright); ratio > d.MaxOverexposedRatio {
		return entity.NewValidationError("image", fmt.Sprintf("overexposed (ratio=%.4f)", ratio))
	}

	dark := gocv.NewMat()
	defer dark.Close()
	gocv.Threshold(gray, &dark, 20, 255, gocv.ThresholdBinaryInv)
	if ratio := ratioOfMask(dark); ratio > d.MaxUnderexposedRatio {
		return entity.NewValidationError("image", fmt.Sprintf("underexposed (ratio=%.4f)", ratio))
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(mat, &hsv, gocv.ColorBGRToHSV)
	channels := gocv.Split(hsv)
	for i := range channels {
		defer channels[i].Close()
	}
	if len(channels) < 3 {
		return errors.New("invalid hsv channels")
	}

	lowSat := gocv.NewMat()
	defer lowSat.Close()
	gocv.Threshold(channels[1], &lowSat, 40, 255, gocv.ThresholdBinaryInv)

	highVal := gocv.NewMat()
	defer highVal.Close()
	gocv.Threshold(channels[2], &highVal, 245, 255, gocv.ThresholdBinary)

	glare := gocv.NewMat()
	defer glare.Close()
	gocv.BitwiseAnd(lowSat, highVal, &glare)
	if ratio := ratioOfMask(glare); ratio > d.MaxGlareRatio {
		return entity.NewValidationError("image", fmt.Sprintf("too much glare (ratio=%.4f)", ratio))
	}
	return nil
}

func ratioOfMask(mask gocv.Mat) float64 {
	total := mask.Cols() * mask.Rows()
	if total <= 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total)
}

// Available сообщает, собран ли бинарник с поддержкой OpenCV.
func Available() bool { return true }

var _ port.DefectDetector = (*GoCVDetector)(nil)
