package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/mux"

	"github.com/riftline/league_anm_browser/anm"
	"github.com/riftline/league_anm_browser/batch"
	"github.com/riftline/league_anm_browser/skeleton"
	"github.com/riftline/league_anm_browser/utils"
)

func setupTestServerState(t *testing.T) {
	t.Helper()

	rotation := mgl32.QuatIdent()
	a := &anm.Animation{
		Fps:        30,
		FrameCount: 1,
		Tracks: []*anm.Track{{
			JointHash: utils.JointNameHash("Root"),
			Samples: map[int]*anm.Sample{
				0: {Rotation: &rotation},
			},
		}},
	}

	ServerLibrary = &batch.Library{Entries: []*batch.Entry{
		{Name: "idle.anm", Animation: a},
	}}
	ReplaceSkeleton(testSkeleton("Root"))
}

func testSkeleton(rootName string) *skeleton.Skeleton {
	return &skeleton.Skeleton{Bones: []skeleton.BoneDescriptor{
		{Name: rootName, Parent: skeleton.NO_PARENT, CurrentBindLocal: skeleton.IdentityTransform()},
	}}
}

func TestHandlerDownloadSkeleton(t *testing.T) {
	setupTestServerState(t)

	w := httptest.NewRecorder()
	HandlerDownloadSkeleton(w, httptest.NewRequest("GET", "/download/skeleton", nil))

	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "skeleton.json") {
		t.Errorf("Content-Disposition = %q", got)
	}

	got := &skeleton.Skeleton{}
	if err := json.Unmarshal(w.Body.Bytes(), got); err != nil {
		t.Fatalf("body does not unmarshal: %v", err)
	}
	if len(got.Bones) != 1 || got.Bones[0].Name != "Root" {
		t.Errorf("downloaded skeleton = %+v", got)
	}
}

func TestSkeletonSwapIsSafeUnderConcurrentRetargets(t *testing.T) {
	setupTestServerState(t)

	request := func() *http.Request {
		r := httptest.NewRequest("GET", "/json/anm/idle.anm/retarget", nil)
		return mux.SetURLVars(r, map[string]string{"file": "idle.anm"})
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				w := httptest.NewRecorder()
				HandlerAjaxRetarget(w, request())
				if body := w.Body.String(); strings.Contains(body, `"error"`) {
					t.Errorf("retarget failed: %s", body)
					return
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			ReplaceSkeleton(testSkeleton("Root"))
		}
	}()
	wg.Wait()

	if got := CurrentSkeleton(); got == nil || got.Bones[0].Name != "Root" {
		t.Errorf("CurrentSkeleton() = %+v", got)
	}
}
