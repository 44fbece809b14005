package sink

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
{{- if .RefreshSeconds}}
<meta http-equiv="refresh" content="{{.RefreshSeconds}}">
{{- end}}
<title>{{.Title}}</title>
<style>
  html, body { margin: 0; height: 100%; overflow: hidden; background: linear-gradient(180deg, #0b1026 0%, #1c2260 55%, #2b2f77 100%); font-family: system-ui, sans-serif; color: #fff; }
  #sky { position: relative; width: 100%; height: 100%; }
  .star { position: absolute; width: var(--size); height: var(--size); transform: translate(-50%, -50%); border-radius: 50%; cursor: pointer;
          background: radial-gradient(circle, #fff 0%, var(--color) 45%, transparent 75%);
          box-shadow: 0 0 var(--glow-size) rgba(255, 255, 255, calc(var(--glow) * 0.6));
          filter: hue-rotate(var(--hue-rotate)) saturate(var(--saturate));
          animation-name: twinkle; animation-iteration-count: infinite; animation-timing-function: ease-in-out; }
  .star.hidden { display: none; }
  .star-bright { box-shadow: 0 0 var(--glow-size) rgba(255, 240, 200, 0.8); }
  .star-super { box-shadow: 0 0 calc(var(--glow-size) * 1.5) rgba(255, 220, 150, 0.95); }
  .star-avatar { position: absolute; inset: 15%; border-radius: 50%; overflow: hidden; display: flex; align-items: center; justify-content: center; font-size: calc(var(--size) * 0.45); color: #1b1f3a; pointer-events: none; }
  .star-avatar img { width: 100%; height: 100%; object-fit: cover; }
  @keyframes twinkle { 0%, 100% { opacity: var(--opacity); } 50% { opacity: calc(var(--opacity) * 0.45); } }

  .meteor { position: absolute; width: 2px; height: 2px; border-radius: 50%; background: #fff; pointer-events: none; animation: fall linear forwards; }
  .meteor::after { content: ""; position: absolute; right: 0; top: 0; width: var(--tail-length); height: 1px; transform-origin: right center; transform: rotate(45deg);
                   background: linear-gradient(90deg, rgba(255,255,255,0), rgba(255,255,255,var(--tail-opacity-start)) 40%, rgba(255,255,255,var(--tail-opacity-end))); }
  .meteor-golden { background: #ffd700; }
  .meteor-blue { background: #7fc8ff; }
  @keyframes fall { from { transform: translate(0, 0); opacity: 1; } to { transform: translate(var(--end-x), var(--end-y)); opacity: 0; } }

  .panel { position: fixed; background: rgba(0, 0, 0, 0.6); border: 1px solid rgba(255, 255, 255, 0.2); border-radius: 12px; padding: 12px 16px; font-size: 13px; z-index: 10; }
  #info { left: 16px; bottom: 16px; max-width: 320px; }
  #info.collapsed .body { display: none; }
  #filter { right: 16px; top: 16px; }
  #filter .options { display: none; margin-top: 8px; }
  #filter.open .options { display: block; }
  .swatch { display: inline-block; width: 10px; height: 10px; border-radius: 50%; margin-right: 6px; }
  button { background: #2196F3; color: #fff; border: none; border-radius: 4px; padding: 4px 8px; cursor: pointer; font-size: 12px; }
  .tooltip { position: fixed; background: rgba(0,0,0,0.9); border: 1px solid rgba(255,255,255,0.3); border-radius: 12px; padding: 12px 16px; font-size: 14px; min-width: 160px; max-width: 280px; z-index: 1000; box-shadow: 0 4px 20px rgba(0,0,0,0.5); }
  .tooltip .title { font-weight: bold; color: #FFD700; margin-bottom: 6px; }
  .tooltip .dim { opacity: 0.7; font-size: 12px; }
</style>
</head>
<body>
<div id="sky" data-run="{{.Sky.RunID}}" data-seed="{{.Sky.Seed}}" data-strategy="{{.Sky.Strategy}}">
{{- range .Stars}}
  <div class="{{.Classes}}" style="{{.Style}}" data-id="{{.ID}}" data-tier="{{.Tier}}" data-level="{{.Tooltip.Level}}" data-size="{{.Tooltip.Size}}" data-title="{{.Tooltip.Title}}" data-description="{{.Tooltip.Description}}"{{if .Tooltip.URL}} data-blog-url="{{.Tooltip.URL}}"{{end}}{{if .Tooltip.RSS}} data-rss="1"{{end}}>
    <div class="star-avatar">{{if .Avatar.URL}}<img src="{{.Avatar.URL}}" alt="{{.Avatar.Text}}" onerror="this.parentNode.textContent=this.alt">{{else}}{{.Avatar.Text}}{{end}}</div>
  </div>
{{- end}}
</div>

<div id="meteors"></div>

<div id="info" class="panel">
  <div><strong>{{.Title}}</strong> <button id="info-toggle">–</button></div>
  <div class="body">
    <div class="dim">{{len .Stars}} stars · {{.Sky.Strategy}} · seed {{.Sky.Seed}}</div>
    {{- range .Tiers}}
    <div><span class="swatch" style="background: {{.Color}}"></span>{{.Level}}: {{.Count}}</div>
    {{- end}}
    {{- if .Regenerate}}
    <div style="margin-top: 8px"><a href="{{.Regenerate}}"><button>New sky</button></a></div>
    {{- end}}
  </div>
</div>

<div id="filter" class="panel">
  <button id="filter-toggle">🔍</button>
  <div class="options">
    {{- range .Tiers}}
    <label><input type="checkbox" value="{{.Name}}" checked> <span class="swatch" style="background: {{.Color}}"></span>{{.Level}}</label><br>
    {{- end}}
    <button id="filter-all">All</button> <button id="filter-none">None</button> <button id="filter-apply">Apply</button>
  </div>
</div>

<script>
(function () {
  const MARGIN = {{.Margin}};
  const LIMIT = {{.TooltipLimit}};

  // Info panel, collapsed state remembered across loads.
  const info = document.getElementById('info');
  if (localStorage.getItem('starsky-info-collapsed') === '1') info.classList.add('collapsed');
  document.getElementById('info-toggle').addEventListener('click', () => {
    info.classList.toggle('collapsed');
    localStorage.setItem('starsky-info-collapsed', info.classList.contains('collapsed') ? '1' : '0');
  });

  // Tier filter.
  const filter = document.getElementById('filter');
  const boxes = Array.from(filter.querySelectorAll('input[type=checkbox]'));
  const toggle = document.getElementById('filter-toggle');
  function icon() {
    const n = boxes.filter(b => b.dataset.applied !== '0').length;
    toggle.textContent = n === boxes.length ? '🔍' : n === 0 ? '🚫' : '⚡' + n;
  }
  toggle.addEventListener('click', () => filter.classList.toggle('open'));
  document.getElementById('filter-all').addEventListener('click', () => boxes.forEach(b => b.checked = true));
  document.getElementById('filter-none').addEventListener('click', () => boxes.forEach(b => b.checked = false));
  document.getElementById('filter-apply').addEventListener('click', () => {
    const on = new Set(boxes.filter(b => b.checked).map(b => b.value));
    boxes.forEach(b => b.dataset.applied = b.checked ? '1' : '0');
    document.querySelectorAll('.star').forEach(s => s.classList.toggle('hidden', !on.has(s.dataset.tier)));
    filter.classList.remove('open');
    icon();
  });

  // Click tooltip.
  let current = null;
  function removeTooltip() { if (current) { current.remove(); current = null; } }
  function place(tip, rect) {
    const w = tip.offsetWidth, h = tip.offsetHeight, sw = window.innerWidth, sh = window.innerHeight;
    let left = rect.left, top = rect.top - h - MARGIN;
    if (left + w > sw - MARGIN) left = sw - w - MARGIN;
    if (left < MARGIN) left = MARGIN;
    if (top < MARGIN) top = rect.bottom + MARGIN;
    if (top + h > sh - MARGIN) {
      left = rect.right + MARGIN;
      if (left + w > sw - MARGIN) left = rect.left - w - MARGIN;
      if (left < MARGIN) left = MARGIN;
      top = Math.max(MARGIN, Math.min(rect.top, sh - h - MARGIN));
    }
    tip.style.left = left + 'px';
    tip.style.top = top + 'px';
  }
  document.addEventListener('click', e => {
    const star = e.target.closest('.star');
    if (!star) { if (!e.target.closest('.tooltip')) removeTooltip(); return; }
    removeTooltip();
    const d = star.dataset;
    const tip = document.createElement('div');
    tip.className = 'tooltip';
    const title = document.createElement('div');
    title.className = 'title';
    title.textContent = '⭐ ' + d.title;
    tip.appendChild(title);
    const level = document.createElement('div');
    level.textContent = d.level;
    tip.appendChild(level);
    if (d.description) {
      const desc = document.createElement('div');
      desc.className = 'dim';
      desc.textContent = d.description.length > LIMIT ? d.description.slice(0, LIMIT) + '...' : d.description;
      tip.appendChild(desc);
    }
    if (d.blogUrl) {
      const visit = document.createElement('button');
      visit.textContent = 'Visit';
      visit.addEventListener('click', ev => { ev.stopPropagation(); window.open(d.blogUrl, '_blank'); removeTooltip(); });
      tip.appendChild(visit);
    }
    const size = document.createElement('div');
    size.className = 'dim';
    size.textContent = d.size + 'px' + (d.rss ? ' | RSS' : '');
    tip.appendChild(size);
    tip.style.visibility = 'hidden';
    document.body.appendChild(tip);
    place(tip, star.getBoundingClientRect());
    tip.style.visibility = 'visible';
    current = tip;
    setTimeout(() => { if (current === tip) removeTooltip(); }, 3000);
  });
{{- if .Meteors}}

  // Meteors.
  const meteorConfig = {{.Meteors}};
  const container = document.getElementById('meteors');
  function pick() {
    const total = meteorConfig.types.reduce((s, t) => s + t.weight, 0);
    const r = Math.random() * total;
    let cum = 0;
    for (const t of meteorConfig.types) { cum += t.weight; if (r <= cum) return t; }
    return meteorConfig.types[0];
  }
  const tails = { fast: [0.2, 0.9], variable: [0.1, 1.0], burst: [0.3, 1.2] };
  function createMeteor() {
    const t = pick();
    const w = window.innerWidth, h = window.innerHeight;
    const startX = Math.random() * w * 0.3 - 100;
    const startY = Math.random() * h * 0.3 - 100;
    const dist = Math.hypot(w, h) + 200;
    const el = document.createElement('div');
    el.className = 'meteor meteor-' + t.name;
    el.style.left = startX + 'px';
    el.style.top = startY + 'px';
    el.style.animationDuration = t.duration + 'ms';
    el.style.setProperty('--end-x', dist * Math.cos(Math.PI / 4) + 'px');
    el.style.setProperty('--end-y', dist * Math.sin(Math.PI / 4) + 'px');
    el.style.setProperty('--tail-length', t.tailLength + 'px');
    const [a, b] = tails[t.speed] || [0.15, 0.8];
    el.style.setProperty('--tail-opacity-start', a);
    el.style.setProperty('--tail-opacity-end', b);
    container.appendChild(el);
    setTimeout(() => el.remove(), t.duration);
  }
  function schedule() {
    if (Math.random() < meteorConfig.spawnRate) createMeteor();
    setTimeout(schedule, Math.random() * (meteorConfig.maxDelay - meteorConfig.minDelay) + meteorConfig.minDelay);
  }
  setTimeout(schedule, meteorConfig.startDelay);
{{- end}}
})();
</script>
</body>
</html>
`
