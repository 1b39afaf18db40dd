// Command stubserver is a local stand-in for the hotel management backend.
// It serves the CRUD endpoints and both chat variants with canned assistant
// behavior so the admin console and chat widget can be exercised without the
// real deployment.
package main

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/crypto/bcrypt"

	"github.com/rettel/hotel-admin/api"
	"github.com/rettel/hotel-admin/chatbot"
)

//Config represents options given in the environment
type Config struct {
	ListenAddr string //addr format used for net.Dial; default: :8000
	Prefix     string //url prefix to mount the api to; default: /api
	Password   string //password for the seeded users; default: admin123
}

var randChars = []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
var randMax = big.NewInt(int64(len(randChars)))

func randKey(length int) string {
	str := make([]byte, length)
	for i := range str {
		k, err := rand.Int(rand.Reader, randMax)
		if err != nil {
			str[i] = randChars[0]
		} else {
			str[i] = randChars[k.Int64()]
		}
	}
	return string(str)
}

type seededUser struct {
	user *api.User
	hash []byte
}

//server holds the in-memory state behind the stub endpoints
type server struct {
	mu       sync.Mutex
	users    map[string]*seededUser // by email
	tokens   map[string]string     // token -> email
	rooms    []*api.Room
	meals    []*api.Meal
	services []*api.Service
	bookings []*api.Booking
	chats    map[string][]string // server-issued chat id -> turns

	upgrader websocket.Upgrader
}

func newServer(password string) *server {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalln("Could not hash seed password:", err)
	}

	s := &server{
		users:  map[string]*seededUser{},
		tokens: map[string]string{},
		chats:  map[string][]string{},
		rooms: []*api.Room{
			{ID: "r1", Number: 101, Type: "single", Status: "available", Price: 80},
			{ID: "r2", Number: 102, Type: "double", Status: "booked", Price: 120},
			{ID: "r3", Number: 201, Type: "suite", Status: "available", Price: 260},
		},
		meals: []*api.Meal{
			{ID: "m1", Name: "Margherita Pizza", Category: "dinner", Currency: "USD", Price: 14, MealType: "main", DietType: "vegetarian", CuisineType: "italian", SpiceLevel: "mild"},
			{ID: "m2", Name: "Butter Chicken", Category: "dinner", Currency: "USD", Price: 18, MealType: "main", DietType: "non-veg", CuisineType: "indian", SpiceLevel: "medium", IsSpecial: true},
		},
		services: []*api.Service{
			{ID: "s1", Name: "Deep Clean", Category: "cleaning", Price: 30},
			{ID: "s2", Name: "Full Body Massage", Category: "massage", Price: 75},
		},
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}

	for _, u := range []*api.User{
		{ID: "u1", Username: "admin", Email: "admin@hotel.test", Role: "management", IsActive: true},
		{ID: "u2", Username: "frontdesk", Email: "staff@hotel.test", Role: "hotel_staff", IsActive: true},
	} {
		s.users[u.Email] = &seededUser{user: u, hash: hash}
	}

	return s
}

func (s *server) router() http.Handler {
	r := mux.NewRouter()

	r.Path("/accounts/login/").Methods("POST").HandlerFunc(s.handleLogin)
	r.Path("/accounts/dashboard/").Methods("GET").HandlerFunc(s.handleDashboard)
	r.Path("/accounts/").Methods("GET").HandlerFunc(s.handleListUsers)

	r.Path("/rooms/").Methods("GET").HandlerFunc(s.handleListRooms)
	r.Path("/rooms/{id}").Methods("GET").HandlerFunc(s.handleGetRoom)

	r.Path("/meals/").Methods("GET").HandlerFunc(s.handleListMeals)
	r.Path("/meals/{id}/").Methods("GET").HandlerFunc(s.handleGetMeal)

	r.Path("/services/").Methods("GET").HandlerFunc(s.handleListServices)
	r.Path("/services/{id}/book/").Methods("POST").HandlerFunc(s.handleBookService)
	r.Path("/bookings/").Methods("GET").HandlerFunc(s.handleListBookings)

	r.Path("/voice-chat/").Methods("POST").HandlerFunc(s.handleVoiceChat)
	r.Path("/end-chat/{id}/").Methods("POST").HandlerFunc(s.handleEndChat)
	r.Path("/create-chat/").Methods("POST").HandlerFunc(s.handleCreateChat)
	r.Path("/create-chat-completion/").Methods("POST").HandlerFunc(s.handleChatCompletion)
	r.Path("/retrieve-chat/{id}/").Methods("GET").HandlerFunc(s.handleRetrieveChat)
	r.Path("/chat").HandlerFunc(s.handleChatSocket)

	return r
}

func writeData(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": code < 400,
		"message": http.StatusText(code),
		"data":    data,
	})
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seeded, ok := s.users[creds.Email]
	if !ok || bcrypt.CompareHashAndPassword(seeded.hash, []byte(creds.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token := randKey(32)
	s.tokens[token] = creds.Email
	writeData(w, http.StatusOK, &api.LoginResponse{User: seeded.user, AccessToken: token})
}

func (s *server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := &api.DashboardData{TotalUsers: len(s.users)}
	for _, u := range s.users {
		switch u.user.Role {
		case "management":
			data.RoleCounts.Management++
		case "hotel_staff":
			data.RoleCounts.HotelStaff++
		default:
			data.RoleCounts.Guest++
		}
	}
	writeData(w, http.StatusOK, data)
}

func (s *server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]*api.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.user)
	}
	writeData(w, http.StatusOK, users)
}

func (s *server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, s.rooms)
}

func (s *server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, room := range s.rooms {
		if room.ID == id {
			writeData(w, http.StatusOK, room)
			return
		}
	}
	writeError(w, http.StatusNotFound, "room not found")
}

func (s *server) handleListMeals(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, map[string]interface{}{
		"results":  s.meals,
		"next":     nil,
		"previous": nil,
		"count":    len(s.meals),
	})
}

func (s *server) handleGetMeal(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, meal := range s.meals {
		if meal.ID == id {
			writeData(w, http.StatusOK, meal)
			return
		}
	}
	writeError(w, http.StatusNotFound, "meal not found")
}

func (s *server) handleListServices(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, s.services)
}

func (s *server) handleBookService(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req api.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, service := range s.services {
		if service.ID == id {
			booking := &api.Booking{
				ID:        randKey(8),
				ServiceID: id,
				Service:   service.Name,
				Date:      req.Date,
				Time:      req.Time,
				Notes:     req.Notes,
				Status:    "pending",
			}
			s.bookings = append(s.bookings, booking)
			writeData(w, http.StatusCreated, booking)
			return
		}
	}
	writeError(w, http.StatusNotFound, "service not found")
}

func (s *server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, s.bookings)
}

// answer builds the canned assistant reply for an utterance.
func (s *server) answer(text string) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "meal"), strings.Contains(lower, "menu"), strings.Contains(lower, "food"):
		suggestions := make([]interface{}, 0, len(s.meals))
		for _, m := range s.meals {
			// raw record shape on purpose; clients must coerce it
			suggestions = append(suggestions, map[string]string{
				"name":  m.Name,
				"price": fmt.Sprintf("%s %.2f", m.Currency, m.Price),
			})
		}
		return map[string]interface{}{
			"message":     "Here is today's menu:",
			"suggestions": suggestions,
		}
	case strings.Contains(lower, "room"):
		available := 0
		for _, r := range s.rooms {
			if r.Status == "available" {
				available++
			}
		}
		return map[string]interface{}{
			"message": fmt.Sprintf("We have %d rooms available right now.", available),
			"options": []map[string]string{
				{"label": "Show room list", "value": "list rooms"},
				{"label": "Book a room", "value": "book a room"},
			},
		}
	case strings.Contains(lower, "help"):
		return map[string]interface{}{
			"suggestions": []string{"Show menu", "Order food", "Track order", "Help"},
		}
	}
	return map[string]interface{}{
		"message": "I can help with rooms, meals, and services. What do you need?",
	}
}

func (s *server) handleVoiceChat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		writeErrorPlain(w, http.StatusBadRequest, "expected multipart form")
		return
	}

	text := r.FormValue("text")
	transcription := ""
	if text == "" {
		file, _, err := r.FormFile("audio")
		if err != nil {
			writeErrorPlain(w, http.StatusBadRequest, "No input provided")
			return
		}
		file.Close()
		// no real transcription here; a fixed utterance keeps the flow testable
		text = "what rooms are available"
		transcription = text
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"transcription": transcription,
		"answer":        s.answer(text),
	})
}

func writeErrorPlain(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func (s *server) handleEndChat(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	delete(s.chats, id)
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ended"})
}

func (s *server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	id := randKey(16)
	s.mu.Lock()
	s.chats[id] = []string{}
	s.mu.Unlock()

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"chat_id": id})
}

func (s *server) handleChatCompletion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChatID  string `json:"chat_id"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ChatID == "" || req.Content == "" {
		writeErrorPlain(w, http.StatusBadRequest, "chat_id and content are required")
		return
	}

	s.mu.Lock()
	turns, ok := s.chats[req.ChatID]
	s.mu.Unlock()
	if !ok {
		writeErrorPlain(w, http.StatusNotFound, "unknown chat")
		return
	}

	reply := s.answer(req.Content)

	s.mu.Lock()
	s.chats[req.ChatID] = append(turns, req.Content)
	s.mu.Unlock()

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"answer": reply})
}

func (s *server) handleRetrieveChat(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	turns, ok := s.chats[id]
	s.mu.Unlock()
	if !ok {
		writeErrorPlain(w, http.StatusNotFound, "unknown chat")
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"chat_id": id, "turns": turns})
}

// handleChatSocket streams the canned answer in small text frames.
func (s *server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sessionID := r.URL.Query().Get("session_id")

	var frame chatbot.ClientFrame
	if err := conn.ReadJSON(&frame); err != nil {
		return
	}

	reply := s.answer(frame.Message)
	message, _ := reply["message"].(string)
	if message == "" {
		message = "I can help with rooms, meals, and services."
	}

	for _, word := range strings.SplitAfter(message, " ") {
		if err := conn.WriteJSON(chatbot.ServerFrame{Type: chatbot.FrameTypeText, Content: word}); err != nil {
			return
		}
	}
	_ = conn.WriteJSON(chatbot.ServerFrame{Type: chatbot.FrameTypeDone, SessionID: sessionID})
}

func main() {
	_ = godotenv.Load()

	config := &Config{}
	if err := envconfig.Process("HOTEL", config); err != nil {
		log.Fatalln("Error reading configuration from environment:", err)
	}
	if config.ListenAddr == "" {
		config.ListenAddr = ":8000"
	}
	if config.Prefix == "" {
		config.Prefix = "/api"
	}
	if config.Password == "" {
		config.Password = "admin123"
	}

	s := newServer(config.Password)

	chain := handlers.CombinedLoggingHandler(os.Stdout,
		handlers.CORS(
			handlers.AllowedOrigins([]string{"*"}),
			handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE"}),
		)(http.StripPrefix(config.Prefix, s.router())))

	log.Println("Listening on:", config.ListenAddr)
	log.Println(http.ListenAndServe(config.ListenAddr, chain))
}
