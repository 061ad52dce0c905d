package tunedex

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Server exposes named collections over the REST API.
type Server struct {
	collections map[string]*Collection
	mutex       sync.Mutex
}

func (s *Server) collectionNameToFileName(name string) string {
	return filepath.Join(globalConfig.DataFolder, name+".tdx")
}

// validCollectionName rejects names that would escape the data folder when
// joined into a file path.
func validCollectionName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\\")
}

func (s *Server) fileNameToCollectionName(fileName string) string {
	return strings.TrimSuffix(filepath.Base(fileName), ".tdx")
}

func (s *Server) getCollection(name string) (*Collection, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	collection, exists := s.collections[name]
	return collection, exists
}

func (s *Server) collectionInfo(name string, collection *Collection) map[string]interface{} {
	stats := collection.ComputeStats()
	return map[string]interface{}{
		"name":          name,
		"num_songs":     stats.SongCount,
		"storage_space": stats.StorageSize,
		"free_space":    stats.FreeSize,
	}
}

func (s *Server) handleCollections(w http.ResponseWriter, r *http.Request) {
	log.Printf("Received %s request for %s", r.Method, r.URL.Path)

	switch r.Method {
	case http.MethodPost:
		var temp struct {
			Name string `json:"name"`
		}

		if err := json.NewDecoder(r.Body).Decode(&temp); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if !validCollectionName(temp.Name) {
			http.Error(w, "Invalid collection name", http.StatusBadRequest)
			return
		}

		s.mutex.Lock()
		defer s.mutex.Unlock()

		if _, exists := s.collections[temp.Name]; exists {
			http.Error(w, "Collection already exists", http.StatusBadRequest)
			return
		}

		collection, err := NewCollection(CollectionOptions{
			Name:     s.collectionNameToFileName(temp.Name),
			FileMode: CreateIfNotExists,
		})
		if err != nil {
			log.Printf("Error creating collection %s: %v", temp.Name, err)
			http.Error(w, "Failed to create collection", http.StatusInternalServerError)
			return
		}

		s.collections[temp.Name] = collection
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"message": "Collection created successfully.", "collection_name": temp.Name})

	case http.MethodGet:
		s.mutex.Lock()
		defer s.mutex.Unlock()

		collectionsInfo := make([]map[string]interface{}, 0, len(s.collections))
		for name, collection := range s.collections {
			collectionsInfo = append(collectionsInfo, s.collectionInfo(name, collection))
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(collectionsInfo)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request, collectionName string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	collection, exists := s.collections[collectionName]
	if !exists {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"message": "Collection did not exist."})
			return
		}
		http.Error(w, "Collection not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		json.NewEncoder(w).Encode(s.collectionInfo(collectionName, collection))

	case http.MethodDelete:
		delete(s.collections, collectionName)
		collection.Close()
		os.Remove(s.collectionNameToFileName(collectionName))
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"message": "Collection deleted successfully."})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleInsertSong(w http.ResponseWriter, r *http.Request, collectionName string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	collection, exists := s.getCollection(collectionName)
	if !exists {
		http.Error(w, "Collection not found", http.StatusNotFound)
		return
	}

	var song Song
	if err := json.NewDecoder(r.Body).Decode(&song); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	id, err := collection.AddSong(&song)
	if err != nil {
		http.Error(w, "Failed to store song", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "Song added successfully.", "id": id})
}

func (s *Server) handleSong(w http.ResponseWriter, r *http.Request, collectionName, idText string) {
	collection, exists := s.getCollection(collectionName)
	if !exists {
		http.Error(w, "Collection not found", http.StatusNotFound)
		return
	}

	id, err := strconv.ParseUint(idText, 10, 64)
	if err != nil {
		http.Error(w, "Invalid song ID", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		song, exists := collection.GetSong(id)
		if !exists {
			http.Error(w, "Song not found", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(song)

	case http.MethodPut:
		var song Song
		if err := json.NewDecoder(r.Body).Decode(&song); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := collection.PutSong(id, &song); err != nil {
			http.Error(w, "Failed to store song", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"message": "Song updated successfully.", "id": id})

	case http.MethodDelete:
		if err := collection.RemoveSong(id); err != nil {
			http.Error(w, "Song not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{"message": "Song deleted successfully.", "id": id})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSearchSongs(w http.ResponseWriter, r *http.Request, collectionName string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	collection, exists := s.getCollection(collectionName)
	if !exists {
		http.Error(w, "Collection not found", http.StatusNotFound)
		return
	}

	query := r.URL.Query()
	filter := query.Get("filter")
	offset, _ := strconv.Atoi(query.Get("offset"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	results := collection.Filter(filter)
	total := len(results)

	// Pagination applies after filtering.
	if offset > len(results) {
		offset = len(results)
	}
	if offset > 0 {
		results = results[offset:]
	}
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}

	json.NewEncoder(w).Encode(struct {
		Total   int     `json:"total"`
		Results []*Song `json:"results"`
	}{
		Total:   total,
		Results: results,
	})
}

// handleCollectionRoutes dispatches /api/v1/collections/{name}[/...] paths.
func (s *Server) handleCollectionRoutes(w http.ResponseWriter, r *http.Request) {
	log.Printf("Received %s request for %s", r.Method, r.URL.Path)

	parts := strings.Split(strings.TrimSuffix(r.URL.Path, "/"), "/")
	if len(parts) < 5 {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return
	}
	collectionName := parts[4]

	switch {
	case len(parts) == 5:
		s.handleCollection(w, r, collectionName)
	case len(parts) == 6 && parts[5] == "songs":
		s.handleInsertSong(w, r, collectionName)
	case len(parts) == 7 && parts[5] == "songs":
		s.handleSong(w, r, collectionName, parts[6])
	case len(parts) == 6 && parts[5] == "search":
		s.handleSearchSongs(w, r, collectionName)
	case len(parts) == 6 && parts[5] == "watch":
		s.handleWatch(w, r, collectionName)
	default:
		http.Error(w, "Invalid path", http.StatusBadRequest)
	}
}

// openDataFolder loads every library file already in the data folder.
func (s *Server) openDataFolder() {
	matches, err := filepath.Glob(filepath.Join(globalConfig.DataFolder, "*.tdx"))
	if err != nil {
		return
	}
	for _, fileName := range matches {
		name := s.fileNameToCollectionName(fileName)
		collection, err := NewCollection(CollectionOptions{Name: fileName, FileMode: CreateIfNotExists})
		if err != nil {
			log.Printf("Skipping %s: %v", fileName, err)
			continue
		}
		s.collections[name] = collection
		log.Printf("Opened collection %s (%d songs)", name, collection.ComputeStats().SongCount)
	}
}

/*
RunServer starts the REST server on the configured host and blocks. Existing
library files in the data folder are opened at startup. With a JWT secret
configured, every request must carry a valid bearer token.
*/
func RunServer() {
	server := &Server{collections: make(map[string]*Collection)}
	server.openDataFolder()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/collections", server.handleCollections)
	mux.HandleFunc("/api/v1/collections/", server.handleCollectionRoutes)

	log.Printf("Listening on %s", globalConfig.Host)
	log.Fatal(http.ListenAndServe(globalConfig.Host, authMiddleware(mux)))
}
