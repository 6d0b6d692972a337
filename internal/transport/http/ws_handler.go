package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"reading-hero-service/internal/app"
	"reading-hero-service/internal/domain"
	"reading-hero-service/internal/progress"
)

const maxProfileLen = 64

// WSHandler gives every connection its own controller. Connections of the same
// profile share one progress store.
type WSHandler struct {
	profiles  *progress.Registry
	generator app.Generator
	upgrader  websocket.Upgrader
}

func NewWSHandler(profiles *progress.Registry, generator app.Generator) *WSHandler {
	return &WSHandler{
		profiles:  profiles,
		generator: generator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	OptionID string `json:"optionId"`
}

type buyPayload struct {
	ItemID string `json:"itemId"`
}

type equipPayload struct {
	Kind  domain.ItemKind `json:"type"`
	Value string          `json:"value"`
}

type topicPayload struct {
	Topic string `json:"topic"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and drives one game session over the socket.
// Every state change is pushed as a "state" message; failed commands answer
// with "refused" (shop preconditions) or "error".
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	profile := strings.TrimSpace(r.URL.Query().Get("profile"))
	if len(profile) > maxProfileLen || strings.ContainsAny(profile, ": ") {
		http.Error(w, "invalid profile", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	controller := app.NewController(h.generator, h.profiles.Get(r.Context(), profile))
	log.Printf("session %s opened (profile %q)", controller.ID(), profile)
	defer log.Printf("session %s closed", controller.ID())

	views, cancel := controller.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	emit := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	go func() {
		defer close(updatesDone)
		for {
			select {
			case view, ok := <-views:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: view}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	// Generation and topic calls outlive a single read; they are cancelled
	// and awaited when the socket closes.
	background, stopBackground := context.WithCancel(r.Context())
	var wg sync.WaitGroup

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(background, &wg, controller, inbound, emit); err != nil {
			emit(failure(err))
		}
	}

	stopBackground()
	wg.Wait()
	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, wg *sync.WaitGroup, c *app.Controller, in inboundMessage, emit func(outboundMessage[any])) error {
	switch in.Type {
	case "suggestTopic":
		wg.Add(1)
		go func() {
			defer wg.Done()
			emit(outboundMessage[any]{Type: "topic", Payload: topicPayload{Topic: c.SuggestTopic(ctx)}})
		}()
		return nil
	case "startQuiz":
		var settings domain.Settings
		if err := decode(in.Payload, &settings); err != nil {
			return err
		}
		ticket, err := c.Begin(settings)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.Generate(ctx, ticket)
		}()
		return nil
	case "select":
		var p selectPayload
		if err := decode(in.Payload, &p); err != nil {
			return err
		}
		return c.Select(p.OptionID)
	case "submit":
		return c.Submit()
	case "next":
		return c.Next(ctx)
	case "finishBonus":
		return c.FinishBonus()
	case "home":
		return c.Home()
	case "shop":
		return c.OpenShop()
	case "back":
		return c.Back()
	case "abandon":
		c.Abandon()
		return nil
	case "buy":
		var p buyPayload
		if err := decode(in.Payload, &p); err != nil {
			return err
		}
		return c.Purchase(ctx, p.ItemID)
	case "equip":
		var p equipPayload
		if err := decode(in.Payload, &p); err != nil {
			return err
		}
		return c.Equip(ctx, p.Kind, p.Value)
	default:
		return errUnsupported
	}
}

type wsError string

func (e wsError) Error() string { return string(e) }

const (
	errUnsupported = wsError("unsupported message type")
	errBadPayload  = wsError("invalid payload")
)

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errBadPayload
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errBadPayload
	}
	return nil
}

func failure(err error) outboundMessage[any] {
	typ := "error"
	if domain.IsRefusal(err) {
		typ = "refused"
	}
	return outboundMessage[any]{Type: typ, Payload: errorPayload{Message: err.Error()}}
}
