// SPDX-License-Identifier: MIT

package api

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/tvh2g/tvh2g/internal/epg"
	"github.com/tvh2g/tvh2g/internal/m3u"
	"github.com/tvh2g/tvh2g/internal/rewrite"
)

const timeFormat = "2006-01-02 15:04:05"

type indexData struct {
	Host             string
	Port             int
	Users            string
	StartedAt        string
	LastUpdate       string
	NextPlaylist     string
	NextEPG          string
	ScheduleHuman    string
	EPGScheduleHuman string
	RetentionEnabled bool
	RetentionDays    int
	EPGLastUpdate    string
	EPGEarliest      string
	EPGLatest        string
	Channels         []m3u.Channel
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexData{
		Host:             s.cfg.Host,
		Port:             s.cfg.Port,
		Users:            strings.Join(s.cfg.UserNames(), ", "),
		StartedAt:        s.started.Format(timeFormat),
		LastUpdate:       "Never",
		NextPlaylist:     "N/A",
		NextEPG:          "N/A",
		ScheduleHuman:    rewrite.HumanizeSchedule(s.cfg.RefreshSchedule),
		EPGScheduleHuman: rewrite.HumanizeSchedule(s.cfg.EPGRefreshSchedule),
		RetentionEnabled: s.cfg.EPGRetentionEnabled,
		RetentionDays:    s.cfg.EPGRetentionDays,
		EPGLastUpdate:    "N/A",
		EPGEarliest:      "N/A",
		EPGLatest:        "N/A",
	}

	if snap := s.store.Playlist(); snap != nil {
		data.LastUpdate = snap.BuiltAt.Format(timeFormat)
		data.Channels = snap.Channels
	}

	if s.schedule != nil {
		if next, ok := s.schedule.NextRun(JobPlaylist); ok {
			data.NextPlaylist = next.Format("2006-01-02 15:04")
		}
		if s.cfg.EPGRetentionEnabled {
			if next, ok := s.schedule.NextRun(JobEPG); ok {
				data.NextEPG = next.Format("2006-01-02 15:04")
			}
		}
	}

	if s.cfg.EPGRetentionEnabled {
		if snap := s.store.EPG(); snap != nil {
			data.EPGLastUpdate = snap.MergedAt.Format(timeFormat)
			if doc, err := epg.Parse(snap.Text); err == nil {
				if earliest, latest, ok := epg.DateRange(doc); ok {
					data.EPGEarliest = earliest.Format("2006-01-02 15:04")
					data.EPGLatest = latest.Format("2006-01-02 15:04")
				}
			}
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, data); err != nil {
		s.logger.Error().Err(err).Str("event", "webui.render_failed").Msg("failed to render index")
	}
}

var indexTmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<title>tvh2g</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
th { background: #eee; }
img { height: 32px; }
.meta td { border: none; padding: 2px 8px; }
</style>
</head>
<body>
<h1>tvh2g</h1>
<table class="meta">
<tr><td>Backend</td><td>{{.Host}}:{{.Port}}</td></tr>
<tr><td>Users</td><td>{{.Users}}</td></tr>
<tr><td>Started</td><td>{{.StartedAt}}</td></tr>
<tr><td>Playlist updated</td><td>{{.LastUpdate}}</td></tr>
<tr><td>Playlist schedule</td><td>{{.ScheduleHuman}} (next: {{.NextPlaylist}})</td></tr>
{{if .RetentionEnabled}}
<tr><td>EPG schedule</td><td>{{.EPGScheduleHuman}} (next: {{.NextEPG}})</td></tr>
<tr><td>EPG updated</td><td>{{.EPGLastUpdate}}</td></tr>
<tr><td>EPG retention</td><td>{{.RetentionDays}} days ({{.EPGEarliest}} &ndash; {{.EPGLatest}})</td></tr>
{{end}}
</table>
<p><a href="/playlist.m3u">playlist.m3u</a> &middot; <a href="/epg.xml">epg.xml</a> &middot;
<a href="/manualplaylistrefresh">refresh playlist</a> &middot; <a href="/manualepgrefresh">refresh EPG</a></p>
<h2>Channels ({{len .Channels}})</h2>
<table>
<tr><th>Group</th><th>Name</th><th>No.</th><th>tvg-id</th><th>Channel ID</th><th>Logo</th></tr>
{{range .Channels}}
<tr>
<td>{{.GroupTitle}}</td>
<td>{{.Name}}</td>
<td>{{.Number}}</td>
<td>{{.TvgID}}</td>
<td>{{.ChannelID}}</td>
<td>{{if .TvgLogo}}<img src="{{.TvgLogo}}" alt="logo">{{end}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`))
