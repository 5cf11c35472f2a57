package main

import (
	"bytes"
	"embed"
	"encoding/base64"
	"encoding/gob"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"lingoquiz"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

//go:embed templates/*.html
var templateFiles embed.FS

const (
	cookieName = "quiz-session"
	sessionKey = "quiz_id"
)

// Feedback is flashed after an answer so the next page can show it
type Feedback struct {
	Correct       bool
	CorrectAnswer string
	Explanation   string
}

func init() {
	gob.Register(Feedback{})
}

type Server struct {
	content    lingoquiz.ContentSource
	translator lingoquiz.Translator
	speech     lingoquiz.Synthesizer
	manager    *lingoquiz.Manager
	store      *sessions.CookieStore
	templates  map[string]*template.Template
	router     *mux.Router
}

func NewServer(content lingoquiz.ContentSource, translator lingoquiz.Translator, speech lingoquiz.Synthesizer, manager *lingoquiz.Manager, secret string) (*Server, error) {
	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"letter": func(i int) string {
			return string(rune('A' + i))
		},
	}

	templates := make(map[string]*template.Template)
	for _, name := range []string{"home", "topic", "question", "results", "history", "story", "sloka", "error"} {
		tmpl, err := template.New(name).Funcs(funcMap).ParseFS(templateFiles, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}

	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	s := &Server{
		content:    content,
		translator: translator,
		speech:     speech,
		manager:    manager,
		store:      store,
		templates:  templates,
		router:     mux.NewRouter(),
	}
	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.HandleFunc("/", s.handleHome).Methods(http.MethodGet)
	s.router.HandleFunc("/topic", s.handleTopic).Methods(http.MethodGet)
	s.router.HandleFunc("/quiz", s.handleQuestion).Methods(http.MethodGet)
	s.router.HandleFunc("/quiz/start", s.handleStartQuiz).Methods(http.MethodPost)
	s.router.HandleFunc("/quiz/answer", s.handleAnswer).Methods(http.MethodPost)
	s.router.HandleFunc("/quiz/reset", s.handleReset).Methods(http.MethodPost)
	s.router.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	s.router.HandleFunc("/story", s.handleStory).Methods(http.MethodGet, http.MethodPost)
	s.router.HandleFunc("/sloka", s.handleSloka).Methods(http.MethodGet, http.MethodPost)
}

func (s *Server) render(w http.ResponseWriter, name string, data map[string]interface{}) {
	s.renderStatus(w, http.StatusOK, name, data)
}

// renderStatus executes the page into a buffer so a template failure can
// still become a 500 before anything is written.
func (s *Server) renderStatus(w http.ResponseWriter, status int, name string, data map[string]interface{}) {
	var buf bytes.Buffer
	if err := s.templates[name].ExecuteTemplate(&buf, "base.html", data); err != nil {
		log.Printf("Template error in %s: %v", name, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// renderError shows err with a suggestion and a way back to topic input
func (s *Server) renderError(w http.ResponseWriter, status int, err error) {
	log.Printf("Request failed: %v", err)
	s.renderStatus(w, status, "error", map[string]interface{}{
		"Message": lingoquiz.UserMessage(err),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, lingoquiz.ErrNotFound), errors.Is(err, lingoquiz.ErrPageNotFound):
		return http.StatusNotFound
	case errors.Is(err, lingoquiz.ErrPageAmbiguous), errors.Is(err, lingoquiz.ErrUnsupportedLanguage):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// speak synthesizes text into an inline audio source. A failure is returned
// as a warning for the page rather than an error.
func (s *Server) speak(r *http.Request, text, lang string) (template.URL, string) {
	audio, err := s.speech.Synthesize(r.Context(), text, lang)
	if err != nil {
		log.Printf("Audio error: %v", err)
		return "", lingoquiz.UserMessage(err)
	}
	return template.URL("data:" + audio.ContentType + ";base64," + base64.StdEncoding.EncodeToString(audio.Data)), ""
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, "home", map[string]interface{}{
		"Languages": lingoquiz.QuizLanguages,
	})
}

func (s *Server) handleTopic(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.FormValue("topic"))
	if topic == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	lang, err := lingoquiz.LookupLanguage(lingoquiz.QuizLanguages, r.FormValue("lang"))
	if err != nil {
		s.renderError(w, http.StatusBadRequest, err)
		return
	}

	titles, err := s.content.Search(r.Context(), "en", topic)
	if err != nil {
		s.renderError(w, statusFor(err), err)
		return
	}

	title := r.FormValue("title")
	if !slices.Contains(titles, title) {
		title = titles[0]
	}

	page, err := s.content.Summary(r.Context(), "en", title)
	if err != nil {
		s.renderError(w, statusFor(err), err)
		return
	}

	summary, _ := lingoquiz.TranslateOrOriginal(r.Context(), s.translator, page.Extract, lang.Code)
	audio, warning := s.speak(r, summary, lang.Code)

	s.render(w, "topic", map[string]interface{}{
		"Topic":        topic,
		"Language":     lang,
		"Titles":       titles,
		"Selected":     title,
		"Summary":      summary,
		"Thumbnail":    page.Thumbnail,
		"Audio":        audio,
		"AudioWarning": warning,
	})
}

func (s *Server) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	topic := strings.TrimSpace(r.FormValue("topic"))
	title := r.FormValue("title")
	if topic == "" || title == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	lang, err := lingoquiz.LookupLanguage(lingoquiz.QuizLanguages, r.FormValue("lang"))
	if err != nil {
		s.renderError(w, http.StatusBadRequest, err)
		return
	}

	page, err := s.content.Summary(r.Context(), "en", title)
	if err != nil {
		s.renderError(w, statusFor(err), err)
		return
	}

	session, _ := s.store.Get(r, cookieName)
	if old, ok := session.Values[sessionKey].(string); ok {
		s.manager.Reset(old)
	}

	id, err := s.manager.Start(r.Context(), page.Extract, lang.Code, topic)
	if err != nil {
		s.renderError(w, http.StatusInternalServerError, err)
		return
	}

	session.Values[sessionKey] = id
	if err := session.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
	}
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	session, _ := s.store.Get(r, cookieName)
	id, ok := session.Values[sessionKey].(string)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	view, err := s.manager.Snapshot(id)
	if err != nil {
		delete(session.Values, sessionKey)
		session.Save(r, w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	var feedback *Feedback
	if flashes := session.Flashes(); len(flashes) > 0 {
		if f, ok := flashes[len(flashes)-1].(Feedback); ok {
			feedback = &f
		}
	}
	if err := session.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
	}

	data := map[string]interface{}{
		"View":     view,
		"Feedback": feedback,
	}
	if view.State == lingoquiz.StateCompleted {
		s.render(w, "results", data)
		return
	}
	s.render(w, "question", data)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	session, _ := s.store.Get(r, cookieName)
	id, ok := session.Values[sessionKey].(string)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	question, err := strconv.Atoi(r.FormValue("question"))
	if err != nil {
		http.Error(w, "Invalid question", http.StatusBadRequest)
		return
	}
	choice, err := strconv.Atoi(r.FormValue("choice"))
	if err != nil {
		http.Error(w, "Please choose an option", http.StatusBadRequest)
		return
	}

	result, err := s.manager.SubmitChoice(r.Context(), id, question, choice)
	switch {
	case errors.Is(err, lingoquiz.ErrStaleAnswer), errors.Is(err, lingoquiz.ErrSessionCompleted):
		// late resubmission of an answered question
		http.Redirect(w, r, "/quiz", http.StatusSeeOther)
		return
	case errors.Is(err, lingoquiz.ErrInvalidChoice):
		http.Error(w, lingoquiz.UserMessage(err), http.StatusBadRequest)
		return
	case err != nil:
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	session.AddFlash(Feedback{
		Correct:       result.Correct,
		CorrectAnswer: result.CorrectAnswer,
		Explanation:   result.Explanation,
	})
	if err := session.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
	}
	http.Redirect(w, r, "/quiz", http.StatusSeeOther)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	session, _ := s.store.Get(r, cookieName)
	if id, ok := session.Values[sessionKey].(string); ok {
		s.manager.Reset(id)
	}
	delete(session.Values, sessionKey)
	session.Flashes()
	if err := session.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.manager.History(r.Context())
	if err != nil {
		s.renderError(w, http.StatusInternalServerError, err)
		return
	}

	type topicScores struct {
		Topic   string
		Entries []lingoquiz.ScoreEntry
	}
	var topics []topicScores
	index := make(map[string]int)
	for _, e := range entries {
		i, ok := index[e.Topic]
		if !ok {
			i = len(topics)
			index[e.Topic] = i
			topics = append(topics, topicScores{Topic: e.Topic})
		}
		topics[i].Entries = append(topics[i].Entries, e)
	}

	s.render(w, "history", map[string]interface{}{
		"Topics": topics,
	})
}

func (s *Server) handleStory(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Catalog":   lingoquiz.StoryCatalog,
		"AgeGroups": lingoquiz.AgeGroups,
		"Languages": lingoquiz.StoryLanguages,
	}
	if r.Method == http.MethodGet {
		s.render(w, "story", data)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	figure, ok := lingoquiz.LookupFigure(r.FormValue("figure"))
	if !ok {
		http.Error(w, "Unknown figure", http.StatusBadRequest)
		return
	}
	age, ok := lingoquiz.LookupAgeGroup(r.FormValue("age"))
	if !ok {
		age = lingoquiz.AgeGroups[0]
	}
	lang, err := lingoquiz.LookupLanguage(lingoquiz.StoryLanguages, r.FormValue("lang"))
	if err != nil {
		s.renderError(w, http.StatusBadRequest, err)
		return
	}

	story, err := lingoquiz.FetchStory(r.Context(), s.content, figure, lang.Code, age)
	if err != nil {
		data["Error"] = "Couldn't find this story. Try switching to English, choosing a different character, or checking the spelling on Wikipedia."
		log.Printf("Story fetch failed for %s: %v", figure.Name, err)
		s.render(w, "story", data)
		return
	}

	audio, warning := s.speak(r, story.Heading+" "+story.Body, story.Language)
	data["Story"] = story
	data["Figure"] = figure.Name
	data["Requested"] = lang
	data["Audio"] = audio
	data["AudioWarning"] = warning
	s.render(w, "story", data)
}

func (s *Server) handleSloka(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Languages": lingoquiz.SlokaLanguages,
	}
	if r.Method == http.MethodGet {
		s.render(w, "sloka", data)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	sloka := r.FormValue("sloka")
	data["Sloka"] = sloka
	if strings.TrimSpace(sloka) == "" {
		data["Warning"] = "Please enter a sloka."
		s.render(w, "sloka", data)
		return
	}
	lang, err := lingoquiz.LookupLanguage(lingoquiz.SlokaLanguages, r.FormValue("lang"))
	if err != nil {
		s.renderError(w, http.StatusBadRequest, err)
		return
	}

	translated, _ := lingoquiz.TranslateOrOriginal(r.Context(), s.translator, sloka, lang.Code)
	pronunciation, pronWarning := s.speak(r, sloka, lingoquiz.SlokaPronunciation)
	meaning, meaningWarning := s.speak(r, translated, lang.Code)

	data["Selected"] = lang
	data["Translated"] = translated
	data["Pronunciation"] = pronunciation
	data["PronunciationWarning"] = pronWarning
	data["Meaning"] = meaning
	data["MeaningWarning"] = meaningWarning
	s.render(w, "sloka", data)
}
