package repository

const (
	getOfferingsByTermWindowQuery = `SELECT id, title, term_start, created_at FROM offerings
					WHERE term_start BETWEEN $1 AND $2 ORDER BY term_start`

	getPlaylistsByOfferingQuery = `SELECT id, offering_id, name, source_prefix, created_at FROM playlists
					WHERE offering_id = $1 ORDER BY created_at`
	getPlaylistByIDQuery = `SELECT id, offering_id, name, source_prefix, created_at FROM playlists
					WHERE id = $1`
	getPlaylistsQuery = `SELECT id, offering_id, name, source_prefix, created_at FROM playlists
					ORDER BY created_at OFFSET $1 LIMIT $2`

	createMediaQuery = `INSERT INTO media (id, playlist_id, source_key, name, created_at)
					VALUES ($1, $2, $3, $4, now()) RETURNING *`
	getMediaByIDQuery = `SELECT id, playlist_id, source_key, name, created_at FROM media
					WHERE id = $1`
	getMediaBySourceKeyQuery = `SELECT id, playlist_id, source_key, name, created_at FROM media
					WHERE playlist_id = $1 AND source_key = $2`
	getMediaByPlaylistQuery = `SELECT id, playlist_id, source_key, name, created_at FROM media
					WHERE playlist_id = $1 ORDER BY created_at`
	getMediaMissingVideoQuery = `SELECT m.id, m.playlist_id, m.source_key, m.name, m.created_at FROM media m
					LEFT JOIN videos v ON v.media_id = m.id
					WHERE v.id IS NULL OR v.video1_id IS NULL`

	createVideoQuery = `INSERT INTO videos (id, media_id, video1_id, video2_id, audio_id, scene_data, duration_ns, created_at)
					VALUES ($1, $2, $3, $4, $5, $6, $7, now()) RETURNING *`
	getVideoByIDQuery = `SELECT id, media_id, video1_id, video2_id, audio_id, scene_data, duration_ns, created_at FROM videos
					WHERE id = $1`
	getVideoByMediaIDQuery = `SELECT id, media_id, video1_id, video2_id, audio_id, scene_data, duration_ns, created_at FROM videos
					WHERE media_id = $1`
	updateVideoQuery = `UPDATE videos
					SET video1_id = $1,
					    video2_id = $2,
					    audio_id = $3,
					    scene_data = $4,
					    duration_ns = $5
					WHERE id = $6 RETURNING *`
	getVideosMissingAudioQuery = `SELECT id, media_id, video1_id, video2_id, audio_id, scene_data, duration_ns, created_at FROM videos
					WHERE video1_id IS NOT NULL AND audio_id IS NULL`
	getVideosMissingTranscriptionQuery = `SELECT v.id, v.media_id, v.video1_id, v.video2_id, v.audio_id, v.scene_data, v.duration_ns, v.created_at FROM videos v
					WHERE v.audio_id IS NOT NULL
					  AND NOT EXISTS (SELECT 1 FROM transcriptions t WHERE t.video_id = v.id AND t.language = $1)`
	getVideosMissingEPubQuery = `SELECT v.id, v.media_id, v.video1_id, v.video2_id, v.audio_id, v.scene_data, v.duration_ns, v.created_at FROM videos v
					WHERE v.scene_data IS NOT NULL
					  AND NOT EXISTS (SELECT 1 FROM epubs e WHERE e.video_id = v.id AND e.language = $1)`

	createTranscriptionQuery = `INSERT INTO transcriptions (id, video_id, language, file_id, srt_file_id, created_at)
					VALUES ($1, $2, $3, $4, $5, now()) RETURNING *`
	getTranscriptionByIDQuery = `SELECT id, video_id, language, file_id, srt_file_id, created_at FROM transcriptions
					WHERE id = $1`
	getTranscriptionByVideoAndLanguageQuery = `SELECT id, video_id, language, file_id, srt_file_id, created_at FROM transcriptions
					WHERE video_id = $1 AND language = $2`
	updateTranscriptionQuery = `UPDATE transcriptions
					SET file_id = $1,
					    srt_file_id = $2
					WHERE id = $3 RETURNING *`
	getTranscriptionsMissingCaptionsQuery = `SELECT id, video_id, language, file_id, srt_file_id, created_at FROM transcriptions
					WHERE file_id IS NOT NULL AND srt_file_id IS NULL`

	createCaptionQuery = `INSERT INTO captions (id, transcription_id, idx, begin_ns, end_ns, text, up_vote, down_vote, version)
					VALUES ($1, $2, $3, $4, $5, $6, 0, 0, 1)`
	getCaptionsByTranscriptionQuery = `SELECT id, transcription_id, idx, begin_ns, end_ns, text, up_vote, down_vote, version FROM captions
					WHERE transcription_id = $1 ORDER BY idx`
	getCaptionByIDQuery = `SELECT id, transcription_id, idx, begin_ns, end_ns, text, up_vote, down_vote, version FROM captions
					WHERE id = $1`
	updateCaptionVoteQuery = `UPDATE captions
					SET up_vote = $1,
					    down_vote = $2,
					    version = version + 1
					WHERE id = $3 AND version = $4 RETURNING *`

	createEPubQuery = `INSERT INTO epubs (id, video_id, language, file_id, created_at)
					VALUES ($1, $2, $3, $4, now()) RETURNING *`
	getEPubByVideoAndLanguageQuery = `SELECT id, video_id, language, file_id, created_at FROM epubs
					WHERE video_id = $1 AND language = $2`

	createFileRecordQuery = `INSERT INTO file_records (id, file_name, private_path, hash, created_at)
					VALUES ($1, $2, $3, $4, now())
					ON CONFLICT (hash) DO UPDATE SET hash = EXCLUDED.hash RETURNING *`
	getFileRecordByIDQuery = `SELECT id, file_name, private_path, hash, created_at FROM file_records
					WHERE id = $1`
	getFileRecordByHashQuery = `SELECT id, file_name, private_path, hash, created_at FROM file_records
					WHERE hash = $1`
	deleteFileRecordQuery = `DELETE FROM file_records WHERE id = $1`
)
