package web

import (
	"html/template"
	"net/http"

	"writer-ai/internal/domain/model"
)

type pageData struct {
	Draft *model.Output
	Band  string
}

var page = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="ja">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width,initial-scale=1" />
<title>約2000文字 リライト</title>
<style>
body{font-family:system-ui,sans-serif;margin:2rem;max-width:880px}
textarea{width:100%;min-height:12rem;font:inherit;padding:.5rem}
.row{display:flex;gap:.5rem;margin:.75rem 0}
.btn{padding:8px 14px;border-radius:8px;border:1px solid #888;background:#fff;cursor:pointer}
.meta{color:#666;font-size:13px}
.err{color:#b00020}
#out{white-space:pre-wrap;border:1px solid #ddd;border-radius:12px;padding:16px;min-height:4rem}
</style>
</head>
<body>
<h2>約2000文字 リライト</h2>
<p class="meta">本文の目標: {{.Band}} 文字</p>
<form id="f" method="post" action="/api/write">
  <textarea name="text" id="text" placeholder="元の文章を入力"></textarea>
  <div class="row">
    <button class="btn" type="submit" id="go">生成</button>
    <button class="btn" type="button" id="clear">クリア</button>
  </div>
</form>
<p id="status" class="meta"></p>
<h3 id="title">{{with .Draft}}{{.Title}}{{end}}</h3>
<p id="meta" class="meta">{{with .Draft}}{{.Meta}}{{end}}</p>
<div id="out">{{with .Draft}}{{.Body}}{{end}}</div>
<div class="row">
  <button class="btn" type="button" id="copy">コピー</button>
  <a class="btn" href="/api/output/download">ダウンロード</a>
</div>
<script>
const $ = (id) => document.getElementById(id);
let full = {{with .Draft}}{{.Full}}{{else}}""{{end}};
function show(o){ $("title").textContent=o.title; $("meta").textContent=o.meta; $("out").textContent=o.body; full=o.full; }
$("f").addEventListener("submit", async (e) => {
  e.preventDefault();
  $("go").disabled = true; $("status").className="meta"; $("status").textContent = "生成中...";
  try {
    const r = await fetch("/api/write", {method:"POST", headers:{"Content-Type":"application/json"}, body: JSON.stringify({text: $("text").value})});
    const j = await r.json();
    if (!r.ok) throw new Error(j.error || r.statusText);
    show(j);
    $("status").textContent = j.accepted ? "" : "目標の文字数に届きませんでした（最後の結果を表示）";
  } catch (err) {
    $("status").className="err"; $("status").textContent = err.message;
  } finally { $("go").disabled = false; }
});
$("clear").addEventListener("click", async () => {
  await fetch("/api/clear", {method:"POST"});
  $("text").value=""; show({title:"",meta:"",body:"",full:""}); $("status").textContent="";
});
$("copy").addEventListener("click", () => { if (full) navigator.clipboard.writeText(full); });
</script>
</body>
</html>`))

func renderPage(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = page.Execute(w, data)
}
