package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"docchat/app/agent"
	"docchat/loader"
	"docchat/model"
	"docchat/store"
	"docchat/types"
)

// DefaultAnswer is the reply for an empty or missing question.
const DefaultAnswer = "Sorry, I don't understand your question."

// NoDocumentAnswer is the reply for a question asked before any upload.
const NoDocumentAnswer = "Please upload a document first."

// Ingester is the single-slot upload path; *loader.PDFLoader satisfies
// it.
type Ingester interface {
	Ingest(ctx context.Context, filename string, r io.Reader) (*types.Document, error)
}

// ChatHandler wires the upload slot, the document index and the answer
// pipeline to the HTTP routes. The whole corpus is process-wide shared
// state: every upload rebuilds the index and the pipeline from scratch
// and swaps them under the lock, so uploads are the single writer and
// questions are readers.
type ChatHandler struct {
	loader    Ingester
	generator model.Generator
	sessions  *session.Store
	logger    *slog.Logger

	mu      sync.RWMutex
	corpus  store.DocumentStorer
	retrier *agent.Retrier
}

func NewChatHandler(l Ingester, g model.Generator, sessions *session.Store) *ChatHandler {
	return &ChatHandler{
		loader:    l,
		generator: g,
		sessions:  sessions,
		logger:    slog.Default(),
	}
}

func (h *ChatHandler) HandleIndex(c *fiber.Ctx) error {
	return c.Redirect("/upload")
}

// HandleUploadPage renders the upload form. Visiting the upload route
// always discards the session's conversation.
func (h *ChatHandler) HandleUploadPage(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	sess.Delete(messagesKey)
	flash := popFlash(sess)
	if err := sess.Save(); err != nil {
		return err
	}
	return c.Render("upload", fiber.Map{"Flash": flash})
}

func (h *ChatHandler) HandleUpload(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	sess.Delete(messagesKey)

	rerender := func(flash string) error {
		if err := sess.Save(); err != nil {
			return err
		}
		return c.Render("upload", fiber.Map{"Flash": flash})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return rerender("Please choose a PDF file to upload.")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	doc, err := h.loader.Ingest(c.Context(), fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, loader.ErrInvalidFormat):
			return rerender("Only PDF files are accepted.")
		case errors.Is(err, loader.ErrNoText):
			return rerender("No readable text was found in that PDF.")
		}
		return err
	}

	corpus, err := store.NewBleveStore()
	if err != nil {
		return err
	}
	if err := corpus.Index(c.Context(), *doc); err != nil {
		corpus.Close()
		return err
	}

	h.mu.Lock()
	old := h.corpus
	h.corpus = corpus
	h.retrier = agent.NewRetrier(agent.New(corpus, h.generator))
	h.mu.Unlock()
	if old != nil {
		old.Close()
	}

	h.logger.Info("document indexed", "title", doc.Title, "chars", len(doc.Content), "pages", doc.Pages)

	setFlash(sess, "File uploaded and processed.")
	if err := sess.Save(); err != nil {
		return err
	}
	return c.Redirect("/chat")
}

func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}
	msgs := loadMessages(sess)
	flash := popFlash(sess)
	if err := sess.Save(); err != nil {
		return err
	}
	return c.Render("chat", fiber.Map{"Messages": msgs, "Flash": flash})
}

// HandleSendMessage answers a question over the current corpus. Every
// failure on this path degrades to a displayable answer; the response is
// always 200 with a JSON body.
func (h *ChatHandler) HandleSendMessage(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c)
	if err != nil {
		return err
	}

	var params types.QuestionParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errs := types.Validate(&params); len(errs) > 0 {
		return c.JSON(types.ChatResponse{Answer: DefaultAnswer})
	}
	question := strings.TrimSpace(params.Question)
	if question == "" {
		return c.JSON(types.ChatResponse{Answer: DefaultAnswer})
	}

	h.mu.RLock()
	retrier := h.retrier
	h.mu.RUnlock()

	answer := NoDocumentAnswer
	if retrier != nil {
		answer = retrier.Answer(c.Context(), question)
	}

	msgs := AppendTurn(loadMessages(sess), question, answer)
	if err := saveMessages(sess, msgs); err != nil {
		return err
	}

	return c.JSON(types.ChatResponse{Answer: answer})
}
