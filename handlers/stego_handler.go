// Package handlers is made to handle requests
package handlers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"image-steganography-backend/audio"
	"image-steganography-backend/imaging"
	"image-steganography-backend/models"
	"image-steganography-backend/stego"
)

// psnrWarnThreshold is the quality floor below which we log a warning;
// clean LSB embedding typically stays well above 50 dB.
const psnrWarnThreshold = 40.0

const maxUploadBytes = 32 << 20 // 32MB

type StegoHandler struct {
	engine *stego.Engine
}

func NewStegoHandler() *StegoHandler {
	return &StegoHandler{
		engine: stego.NewEngine(),
	}
}

func (h *StegoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Steganography API is running",
		"version": "1.0.0",
	})
}

// EmbedPayload hides a text message or an uploaded secret file inside
// the uploaded carrier and streams the stego carrier back.
func (h *StegoHandler) EmbedPayload(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		c.JSON(http.StatusBadRequest, models.EmbedResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to parse form: %v", err),
		})
		return
	}

	password := c.PostForm("password")
	compress := c.PostForm("compress") == "true"
	message := c.PostForm("message")

	carrierFile, carrierHeader, err := c.Request.FormFile("carrier_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.EmbedResponse{
			Success: false,
			Message: "Carrier file is required",
		})
		return
	}
	defer carrierFile.Close()

	if !isSupportedCarrier(carrierHeader.Filename) {
		c.JSON(http.StatusBadRequest, models.EmbedResponse{
			Success: false,
			Message: "Unsupported carrier format. Use PNG, BMP, JPEG, GIF or WAV",
		})
		return
	}

	req := &stego.Request{
		Text:     message,
		Password: password,
		Compress: compress,
	}

	secretFile, secretHeader, err := c.Request.FormFile("secret_file")
	switch {
	case err == nil:
		defer secretFile.Close()
		if message != "" {
			c.JSON(http.StatusBadRequest, models.EmbedResponse{
				Success: false,
				Message: "Supply either a message or a secret file, not both",
			})
			return
		}
		secretData, readErr := io.ReadAll(secretFile)
		if readErr != nil {
			c.JSON(http.StatusInternalServerError, models.EmbedResponse{
				Success: false,
				Message: fmt.Sprintf("Failed to read secret file: %v", readErr),
			})
			return
		}
		req.Filename = filepath.Base(secretHeader.Filename)
		req.Data = secretData
	case err == http.ErrMissingFile:
		if message == "" {
			c.JSON(http.StatusBadRequest, models.EmbedResponse{
				Success: false,
				Message: "A message or a secret file is required",
			})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, models.EmbedResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to read secret file: %v", err),
		})
		return
	}

	carrierData, err := io.ReadAll(carrierFile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.EmbedResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to read carrier file: %v", err),
		})
		return
	}

	if isWAVFile(carrierHeader.Filename) {
		h.embedIntoWAV(c, carrierHeader, carrierData, req)
		return
	}
	h.embedIntoImage(c, carrierHeader, carrierData, req)
}

func (h *StegoHandler) embedIntoImage(c *gin.Context, header *multipart.FileHeader, carrierData []byte, req *stego.Request) {
	carrier, err := imaging.Decode(carrierData)
	if err != nil {
		respondError(c, err, "Failed to decode carrier image")
		return
	}

	stegoPixels, err := h.engine.EncodePixels(carrier.Pixels, req)
	if err != nil {
		respondError(c, err, "Failed to embed payload")
		return
	}

	psnr := imaging.PSNR(carrier.Pixels, stegoPixels)
	if !imaging.ValidatePSNR(psnr, psnrWarnThreshold) {
		log.Printf("Warning: PSNR %.2f dB below threshold %.2f dB for %s", psnr, psnrWarnThreshold, header.Filename)
	}

	// BMP covers stay BMP; everything else (incl. lossy JPEG/GIF input)
	// is re-serialized as PNG so the embedded bits survive.
	var output []byte
	contentType := "image/png"
	outputExt := ".png"
	if carrier.Format == "bmp" {
		output, err = imaging.EncodeBMP(stegoPixels, carrier.Width, carrier.Height)
		contentType = "image/bmp"
		outputExt = ".bmp"
	} else {
		output, err = imaging.EncodePNG(stegoPixels, carrier.Width, carrier.Height)
	}
	if err != nil {
		respondError(c, err, "Failed to encode stego image")
		return
	}

	writeCarrierResponse(c, header.Filename, outputExt, contentType, output, psnr, h.engine.PixelCapacity(carrier.Pixels))
}

func (h *StegoHandler) embedIntoWAV(c *gin.Context, header *multipart.FileHeader, carrierData []byte, req *stego.Request) {
	pcm, meta, err := audio.DecodeWAV(carrierData)
	if err != nil {
		respondError(c, err, "Failed to decode carrier WAV")
		return
	}

	stegoPCM, err := h.engine.EncodePCM(pcm, req)
	if err != nil {
		respondError(c, err, "Failed to embed payload")
		return
	}

	psnr := imaging.PSNR(pcm, stegoPCM)
	if !imaging.ValidatePSNR(psnr, psnrWarnThreshold) {
		log.Printf("Warning: PSNR %.2f dB below threshold %.2f dB for %s", psnr, psnrWarnThreshold, header.Filename)
	}

	output, err := audio.EncodeWAV(stegoPCM, meta)
	if err != nil {
		respondError(c, err, "Failed to encode stego WAV")
		return
	}

	writeCarrierResponse(c, header.Filename, ".wav", "audio/wav", output, psnr, h.engine.PCMCapacity(pcm))
}

// ExtractPayload recovers the hidden payload from an uploaded stego
// carrier. Text payloads come back as JSON, file payloads as a download.
func (h *StegoHandler) ExtractPayload(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to parse form: %v", err),
		})
		return
	}

	password := c.PostForm("password")

	stegoFile, stegoHeader, err := c.Request.FormFile("stego_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{
			Success: false,
			Message: "Stego carrier file is required",
		})
		return
	}
	defer stegoFile.Close()

	if !isSupportedCarrier(stegoHeader.Filename) {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{
			Success: false,
			Message: "Unsupported carrier format. Use PNG, BMP, JPEG, GIF or WAV",
		})
		return
	}

	stegoData, err := io.ReadAll(stegoFile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ExtractResponse{
			Success: false,
			Message: fmt.Sprintf("Failed to read stego carrier: %v", err),
		})
		return
	}

	var result *stego.Result
	if isWAVFile(stegoHeader.Filename) {
		pcm, _, decErr := audio.DecodeWAV(stegoData)
		if decErr != nil {
			respondExtractError(c, decErr, "Failed to decode stego WAV")
			return
		}
		result, err = h.engine.DecodePCM(pcm, password)
	} else {
		carrier, decErr := imaging.Decode(stegoData)
		if decErr != nil {
			respondExtractError(c, decErr, "Failed to decode stego image")
			return
		}
		result, err = h.engine.DecodePixels(carrier.Pixels, password)
	}
	if err != nil {
		respondExtractError(c, err, "Failed to extract payload")
		return
	}

	if result.Kind == stego.KindText {
		c.JSON(http.StatusOK, models.ExtractResponse{
			Success: true,
			Kind:    string(stego.KindText),
			Value:   result.Text,
		})
		return
	}

	filename := filepath.Base(result.Filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", fmt.Sprintf("%d", len(result.Data)))
	c.Header("X-Stego-Kind", string(stego.KindFile))
	c.Header("X-Stego-Filename", filename)

	c.Data(http.StatusOK, "application/octet-stream", result.Data)
}

func writeCarrierResponse(c *gin.Context, carrierName, outputExt, contentType string, output []byte, psnr float64, capacity int) {
	baseFilename := strings.TrimSuffix(filepath.Base(carrierName), filepath.Ext(carrierName))
	outputFilename := fmt.Sprintf("%s_stego%s", baseFilename, outputExt)

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputFilename))
	c.Header("Content-Length", fmt.Sprintf("%d", len(output)))

	c.Header("X-Stego-Method", "LSB")
	c.Header("X-Stego-PSNR", fmt.Sprintf("%.2f", psnr))
	c.Header("X-Stego-Capacity", fmt.Sprintf("%d", capacity))

	c.Data(http.StatusOK, contentType, output)
}

func respondError(c *gin.Context, err error, context string) {
	c.JSON(statusForError(err), models.EmbedResponse{
		Success: false,
		Message: fmt.Sprintf("%s: %v", context, err),
	})
}

func respondExtractError(c *gin.Context, err error, context string) {
	c.JSON(statusForError(err), models.ExtractResponse{
		Success: false,
		Message: fmt.Sprintf("%s: %v", context, err),
	})
}

func statusForError(err error) int {
	se, ok := models.AsStegoError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch se.Code {
	case models.ErrCodeInvalidInput, models.ErrCodeCapacityExceeded:
		return http.StatusBadRequest
	case models.ErrCodeAuthenticationFailed:
		return http.StatusUnauthorized
	case models.ErrCodeNoHiddenData:
		return http.StatusNotFound
	case models.ErrCodeCorruptFrame:
		return http.StatusUnprocessableEntity
	case models.ErrCodeIOError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func isSupportedCarrier(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".bmp", ".jpg", ".jpeg", ".gif", ".wav":
		return true
	}
	return false
}

func isWAVFile(filename string) bool {
	return strings.ToLower(filepath.Ext(filename)) == ".wav"
}
