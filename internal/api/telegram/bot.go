package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	app "subsea-inspector/internal/application"
	"subsea-inspector/internal/container"
	"subsea-inspector/internal/domain/entity"
)

const (
	// maxPhotoBytes ограничение на размер скачиваемого фото.
	maxPhotoBytes = 20 << 20

	// maxInFlight сколько сообщений обрабатывается одновременно
	maxInFlight = 8

	pruneInterval = time.Hour
	sessionIdle   = 24 * time.Hour
)

// Bot представляет Telegram-бота
type Bot struct {
	api      *tgbotapi.BotAPI
	services *container.Container
	client   *http.Client
	log      *slog.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, services *container.Container, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	log = log.With("component", "telegram")
	log.Info("authorized", "account", api.Self.UserName)

	return &Bot{
		api:      api,
		services: services,
		client:   http.DefaultClient,
		log:      log,
	}, nil
}

// Run читает обновления до отмены ctx. Каждое сообщение обрабатывается в своей
// горутине, не больше maxInFlight одновременно; перед выходом Run дожидается их.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	prune := time.NewTicker(pruneInterval)
	defer prune.Stop()

	var handlers errgroup.Group
	handlers.SetLimit(maxInFlight)
	defer func() { _ = handlers.Wait() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-prune.C:
			if n, err := b.services.UserService.PruneIdle(ctx, sessionIdle); err != nil {
				b.log.Warn("prune sessions", "error", err)
			} else if n > 0 {
				b.log.Debug("pruned idle sessions", "count", n)
			}
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			msg := update.Message
			handlers.Go(func() error {
				b.handleMessage(ctx, msg)
				return nil
			})
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	user, err := b.services.UserService.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.log.Error("get user", "user_id", msg.From.ID, "error", err)
		return
	}

	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	case len(msg.Photo) > 0:
		b.handlePhoto(ctx, msg)
	case msg.Location != nil:
		b.handleLocation(ctx, msg)
	case user.State == entity.StateAwaitingLocation:
		b.sendMessage(msg.Chat.ID, msgSendLocation)
	default:
		b.sendMessage(msg.Chat.ID, msgSendPhoto)
	}
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.cancel(ctx, userID, chatID)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "check":
		if _, err := b.services.UserService.BeginCheck(ctx, userID, chatID); err != nil {
			b.log.Error("begin check", "user_id", userID, "error", err)
		}
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "nearby":
		if _, err := b.services.UserService.BeginNearby(ctx, userID, chatID); err != nil {
			b.log.Error("begin nearby", "user_id", userID, "error", err)
		}
		reply := tgbotapi.NewMessage(chatID, msgAwaitingLocation)
		reply.ReplyMarkup = tgbotapi.NewOneTimeReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonLocation(btnShareLocation)),
		)
		b.send(reply)

	case "cancel":
		b.cancel(ctx, userID, chatID)
		reply := tgbotapi.NewMessage(chatID, msgCancelled)
		reply.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
		b.send(reply)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handlePhoto обрабатывает входящее фото
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID
	if err := b.services.UserService.BeginProcessing(ctx, userID, chatID); err != nil {
		if errors.Is(err, app.ErrBusy) {
			b.sendMessage(chatID, msgBusy)
			return
		}
		b.log.Error("begin processing", "user_id", userID, "error", err)
		return
	}
	defer b.release(ctx, userID)

	b.sendMessage(chatID, msgProcessing)

	// Получаем файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	imageData, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		b.log.Error("download photo", "user_id", userID, "error", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	out, err := b.services.InspectionService.Analyze(ctx, app.AnalysisRequest{
		Name:      photo.FileUniqueID,
		Image:     imageData,
		Inspector: inspectorName(msg.From),
	})
	if err != nil {
		b.log.Warn("analyze photo", "user_id", userID, "bytes", len(imageData), "error", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	text := FormatAnalysis(out.Analysis)
	if len(out.Highlighted) == 0 {
		b.sendMessage(chatID, text)
		return
	}

	reply := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: out.Analysis.ID + ".jpg", Bytes: out.Highlighted})
	reply.Caption = truncateCaption(text)
	b.send(reply)
	if len([]rune(text)) > captionLimit {
		b.sendMessage(chatID, text)
	}
}

// handleLocation ищет месторождения рядом с присланной точкой
func (b *Bot) handleLocation(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID
	defer b.release(ctx, userID)

	center := entity.Location{Latitude: msg.Location.Latitude, Longitude: msg.Location.Longitude}
	radius := b.services.FieldService.Defaults().RadiusKm

	matches, err := b.services.FieldService.Nearby(ctx, center, radius)
	if err != nil {
		b.log.Error("nearby fields", "user_id", userID, "error", err)
		b.sendMessage(chatID, msgSearchError)
		return
	}

	reply := tgbotapi.NewMessage(chatID, FormatNearby(matches, radius))
	reply.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	b.send(reply)
}

func (b *Bot) cancel(ctx context.Context, userID, chatID int64) {
	if _, err := b.services.UserService.Cancel(ctx, userID, chatID); err != nil {
		b.log.Error("cancel dialogue", "user_id", userID, "error", err)
	}
}

func (b *Bot) release(ctx context.Context, userID int64) {
	if err := b.services.UserService.Release(ctx, userID); err != nil {
		b.log.Error("release user", "user_id", userID, "error", err)
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(resp.Body, maxPhotoBytes+1)); err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if buf.Len() > maxPhotoBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", maxPhotoBytes)
	}
	return buf.Bytes(), nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.log.Error("send message", "error", err)
	}
}

func inspectorName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return "@" + u.UserName
	}
	return u.FirstName
}
