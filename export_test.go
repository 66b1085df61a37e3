package sqlbridge

var DSNFromURL = dsnFromURL
var ClampRowsAffected = clampRowsAffected
