package dashboard

type pageData struct {
	Columns          []string
	DefaultThreshold float64
	ModelKind        string
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Fraud Detection Dashboard</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 0; background: #f5f6f8; color: #222; }
header { background: #1f2937; color: #fff; padding: 16px 24px; }
header small { color: #9ca3af; }
main { display: flex; gap: 24px; padding: 24px; }
aside { width: 260px; background: #fff; padding: 16px; border-radius: 8px; }
section { flex: 1; background: #fff; padding: 16px; border-radius: 8px; }
.fields { display: grid; grid-template-columns: repeat(auto-fill, minmax(160px, 1fr)); gap: 8px; }
.fields label { display: flex; flex-direction: column; font-size: 13px; }
button { margin: 4px 4px 4px 0; padding: 8px 14px; border: 0; border-radius: 4px; background: #2563eb; color: #fff; cursor: pointer; }
button.secondary { background: #6b7280; }
#result { margin-top: 16px; font-size: 18px; }
.NORMAL { color: #15803d; }
.SUSPICIOUS { color: #b91c1c; font-weight: bold; }
.error { color: #b45309; }
</style>
</head>
<body>
<header>
<h1>Fraud Detection Dashboard</h1>
<small>Model: {{.ModelKind}} &middot; {{len .Columns}} features</small>
</header>
<main>
<aside>
<h3>Settings</h3>
<label>Decision threshold: <span id="threshold-value">{{printf "%.2f" .DefaultThreshold}}</span></label>
<input id="threshold" type="range" min="0" max="1" step="0.01" value="{{.DefaultThreshold}}">
<h3>Input mode</h3>
<label><input type="radio" name="mode" value="simplified" checked> Simplified (Time, Amount)</label><br>
<label><input type="radio" name="mode" value="expert"> Expert (all features)</label>
<h3>Examples</h3>
<button class="secondary" data-preset="normal">Load normal example</button>
<button class="secondary" data-preset="fraud">Load fraud example</button>
</aside>
<section>
<h2>Transaction</h2>
<div id="fields" class="fields"></div>
<button id="analyze">Analyze transaction</button>
<div id="result"></div>
</section>
</main>
<script>
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
const send = (msg) => ws.send(JSON.stringify(msg));

function renderFields(state) {
  const box = document.getElementById("fields");
  box.innerHTML = "";
  for (const name of state.fields) {
    const label = document.createElement("label");
    label.textContent = name;
    const input = document.createElement("input");
    input.type = "number";
    input.step = "any";
    input.value = state.inputs[name];
    input.addEventListener("change", () => {
      const value = parseFloat(input.value);
      if (!Number.isNaN(value)) send({type: "input", name: name, value: value});
    });
    label.appendChild(input);
    box.appendChild(label);
  }
}

function render(msg) {
  const state = msg.state;
  document.getElementById("threshold").value = state.threshold;
  document.getElementById("threshold-value").textContent = state.threshold.toFixed(2);
  for (const r of document.querySelectorAll("input[name=mode]")) r.checked = r.value === state.mode;
  renderFields(state);

  const out = document.getElementById("result");
  if (msg.error) {
    out.className = "error";
    out.textContent = msg.error;
  } else if (msg.decision) {
    const d = msg.decision;
    out.className = d.verdict;
    out.textContent = "Fraud probability: " + d.probability.toFixed(4) + ": " +
      (d.verdict === "SUSPICIOUS" ? "Suspicious transaction" : "Normal transaction");
  } else {
    out.className = "";
    out.textContent = "";
  }
}

ws.onmessage = (ev) => render(JSON.parse(ev.data));
ws.onclose = () => {
  const out = document.getElementById("result");
  out.className = "error";
  out.textContent = "Connection closed, reload the page to start a new session.";
};

document.getElementById("threshold").addEventListener("input", (ev) =>
  send({type: "threshold", threshold: parseFloat(ev.target.value)}));
for (const r of document.querySelectorAll("input[name=mode]"))
  r.addEventListener("change", () => send({type: "mode", mode: r.value}));
for (const b of document.querySelectorAll("button[data-preset]"))
  b.addEventListener("click", () => send({type: "preset", preset: b.dataset.preset}));
document.getElementById("analyze").addEventListener("click", () => send({type: "analyze"}));
</script>
</body>
</html>
`
