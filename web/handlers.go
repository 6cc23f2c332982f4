package web

import (
	"bytes"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/riftline/league_anm_browser/anm"
	"github.com/riftline/league_anm_browser/retarget"
	"github.com/riftline/league_anm_browser/skeleton"
	"github.com/riftline/league_anm_browser/status"
	"github.com/riftline/league_anm_browser/utils"
	"github.com/riftline/league_anm_browser/webutils"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func libraryAnimation(r *http.Request) (*anm.Animation, string, error) {
	file := mux.Vars(r)["file"]
	entry := ServerLibrary.Get(file)
	if entry == nil {
		return nil, file, errors.Errorf("Unknown animation %q", file)
	}
	if entry.Err != nil {
		return nil, file, entry.Err
	}
	return entry.Animation, file, nil
}

func HandlerAjaxAnimations(w http.ResponseWriter, r *http.Request) {
	type animationInfo struct {
		Name       string  `json:"name"`
		Fps        float32 `json:"fps"`
		FrameCount int     `json:"frame_count"`
		Tracks     int     `json:"tracks"`
		Error      string  `json:"error,omitempty"`
	}

	infos := make([]animationInfo, 0, len(ServerLibrary.Entries))
	for _, entry := range ServerLibrary.Entries {
		info := animationInfo{Name: entry.Name}
		if entry.Err != nil {
			info.Error = entry.Err.Error()
		} else {
			info.Fps = entry.Animation.Fps
			info.FrameCount = entry.Animation.FrameCount
			info.Tracks = len(entry.Animation.Tracks)
		}
		infos = append(infos, info)
	}
	webutils.WriteJson(w, infos)
}

func HandlerAjaxAnimation(w http.ResponseWriter, r *http.Request) {
	a, _, err := libraryAnimation(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, a)
}

func HandlerAjaxRetarget(w http.ResponseWriter, r *http.Request) {
	a, _, err := libraryAnimation(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	out, err := retarget.Solve(a, CurrentSkeleton(), 0)
	if err != nil {
		log.Printf("[web] retarget failed: %v", err)
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteJson(w, out)
}

func HandlerDumpAnimation(w http.ResponseWriter, r *http.Request) {
	a, _, err := libraryAnimation(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteResult(w, []byte(utils.SDump(a)))
}

func HandlerDownloadGLB(w http.ResponseWriter, r *http.Request) {
	a, file, err := libraryAnimation(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	skl := CurrentSkeleton()
	out, err := retarget.Solve(a, skl, 0)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	name := strings.TrimSuffix(file, ".anm")
	var buf bytes.Buffer
	if err := out.ExportGLTFBinary(&buf, skl, name); err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Failed to export %q", file))
		return
	}
	webutils.WriteFile(w, &buf, name+".glb")
}

func HandlerDownloadReencoded(w http.ResponseWriter, r *http.Request) {
	a, file, err := libraryAnimation(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	data, err := anm.WriteV5(a)
	if err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Failed to encode %q", file))
		return
	}
	webutils.WriteFile(w, bytes.NewReader(data), file)
}

func HandlerAjaxSkeleton(w http.ResponseWriter, r *http.Request) {
	webutils.WriteJson(w, CurrentSkeleton())
}

func HandlerDownloadSkeleton(w http.ResponseWriter, r *http.Request) {
	webutils.WriteJsonFile(w, CurrentSkeleton(), "skeleton")
}

func HandlerUploadSkeleton(w http.ResponseWriter, r *http.Request) {
	skl := &skeleton.Skeleton{}
	if err := webutils.ReadJsonFile(r, "skeleton", skl); err != nil {
		webutils.WriteError(w, err)
		return
	}

	// Unnamed bones would collide on the empty-string hash.
	var nameGen utils.RandomNameGenerator
	for i := range skl.Bones {
		if skl.Bones[i].Name == "" {
			skl.Bones[i].Name = nameGen.RandomName()
		}
	}

	if err := skl.Validate(); err != nil {
		webutils.WriteError(w, err)
		return
	}

	ReplaceSkeleton(skl)
	status.Info("Skeleton replaced: %d bones", len(skl.Bones))
	webutils.WriteJson(w, skl)
}

func HandlerWebsocketStatus(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] ws upgrade failed: %v", err)
		return
	}
	status.NewClient(conn)
}
