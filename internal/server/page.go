package server

// indexPage is the upload form served at "/". The form posts to /graph and the browser shows
// the returned PNG directly.
const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>HessQ Fraud Detection Demo</title>
<style>
body { font-family: sans-serif; max-width: 760px; margin: 2rem auto; color: #222; }
.note { background: #eef6fb; padding: .75rem 1rem; border-radius: 6px; }
code { background: #f3f3f3; padding: 0 .25rem; }
</style>
</head>
<body>
<h1>&#128269; HessQ Fraud Detection Demo</h1>
<p>Transactions that are close together in space, time and amount are connected in a graph.
Transactions with many close connections are highlighted as potentially suspicious.</p>
<form action="/graph" method="post" enctype="multipart/form-data">
<p>Upload a CSV file with transactions (columns
<code>Transaction ID, Amount ($), Latitude, Longitude, Timestamp</code>):</p>
<input type="file" name="file" accept=".csv,text/csv">
<button type="submit">Build graph</button>
</form>
<p class="note">No file? Submit the empty form or open <a href="/graph/default.png">the demo graph</a>
built from the default demo transactions.</p>
<p>&#129504; Transactions with <strong>red nodes</strong> have multiple suspicious connections and may indicate potential fraud.</p>
</body>
</html>
`
