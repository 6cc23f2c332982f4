package web

import (
	"log"
	"net/http"
	"os"
	"path"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/riftline/league_anm_browser/batch"
	"github.com/riftline/league_anm_browser/skeleton"
)

var ServerLibrary *batch.Library

// The active skeleton is swapped at runtime by the upload handler while
// retarget handlers read it from other goroutines.
var serverSkeletonLock sync.RWMutex
var serverSkeleton *skeleton.Skeleton

func CurrentSkeleton() *skeleton.Skeleton {
	serverSkeletonLock.RLock()
	defer serverSkeletonLock.RUnlock()
	return serverSkeleton
}

func ReplaceSkeleton(skl *skeleton.Skeleton) {
	serverSkeletonLock.Lock()
	defer serverSkeletonLock.Unlock()
	serverSkeleton = skl
}

func StartServer(addr string, lib *batch.Library, skl *skeleton.Skeleton, webPath string) error {
	ServerLibrary = lib
	ReplaceSkeleton(skl)

	r := mux.NewRouter()
	r.HandleFunc("/json/anm", HandlerAjaxAnimations)
	r.HandleFunc("/json/anm/{file}", HandlerAjaxAnimation)
	r.HandleFunc("/json/anm/{file}/retarget", HandlerAjaxRetarget)
	r.HandleFunc("/dump/anm/{file}", HandlerDumpAnimation)
	r.HandleFunc("/download/anm/{file}/glb", HandlerDownloadGLB)
	r.HandleFunc("/download/anm/{file}/reencode", HandlerDownloadReencoded)
	r.HandleFunc("/json/skeleton", HandlerAjaxSkeleton)
	r.HandleFunc("/download/skeleton", HandlerDownloadSkeleton)
	r.HandleFunc("/upload/skeleton", HandlerUploadSkeleton)
	r.HandleFunc("/ws/status", HandlerWebsocketStatus)

	r.PathPrefix("/").Handler(http.FileServer(http.Dir(path.Join(webPath, "data"))))

	h := handlers.RecoveryHandler()(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
